package dialog

// Fixed replies composed by the engine itself. Intent templates live in the phrasebook.
const (
	msgAskAttribute    = "Вы имеете в виду %s? Хотите узнать цену, описание или наличие?"
	msgCategoryToy     = "В категории «%s» есть %s. Хотите узнать цену, описание или наличие?"
	msgEmptyCategory   = "У нас нет игрушек в категории «%s». Попробуйте другую категорию!"
	msgClarifyToy      = "Пожалуйста, уточните название игрушки или категорию."
	msgAskAge          = "Укажите возраст, например, «5 лет»."
	msgAgePick         = "Для возраста %s лет советую %s! Хотите узнать цену или описание?"
	msgAgeNone         = "Извините, нет игрушек для возраста %s лет. Попробуйте другой возраст."
	msgWhichAttribute  = "Что хотите узнать про %s: цену, описание или наличие?"
	msgAnyToy          = "игрушку"
	msgWhichToy        = "Какую игрушку или категорию вы имеете в виду?"
	msgNotInCatalog    = "Извините, такой игрушки нет в каталоге."
	msgAnythingElse    = " Что ещё интересует?"
	msgRecommendMore   = " Хотите узнать цену или описание %s?"
	msgRecommendNone   = "Извините, у нас нет игрушек для возраста %s лет."
	msgWhichAge        = "Для какого возраста нужна игрушка?"
	msgCompareChoice   = " Что интересует: %s или %s?"
	msgPriceConfirm    = "Цена на %s — %d рублей. Что ещё интересует?"
	msgNameToy         = "Назови игрушку, чтобы я рассказал подробнее!"
	msgYesHello        = "Отлично! У нас есть %s. Что хотите узнать?"
	msgYesTypes        = "У нас есть %s. Назови одну, чтобы узнать больше!"
	msgYesOfftopic     = "Хорошо, давай продолжим! Хочешь узнать про игрушки?"
	msgYesDefault      = "Хорошо, что интересует? Игрушки, цены или что-то ещё?"
	msgNo              = "Хорошо, какую игрушку обсудим теперь?"
	msgFilterFound     = "%s есть: %s."
	msgFilterPick      = "%s есть: %s. Что хотите узнать про %s: цену, описание или наличие?"
	msgFilterNone      = "Извините, нет игрушек %s. Не нашлось совпадений по условиям: %s."
	msgFilterNeedSlots = "Укажите возраст или цену для фильтрации."
	msgNonText         = "Пожалуйста, отправьте текст."

	promoMarker = "Кстати, у нас есть"
	msgPromo    = " " + promoMarker + " %s — отличный выбор для детей %s!"
)

// Constraint names reported when a filter matches nothing.
const (
	constraintAge      = "возраст"
	constraintPrice    = "цена"
	constraintCategory = "категория"
)
