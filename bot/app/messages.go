package app

import (
	"fmt"

	"github.com/m3rciful/toybot/bot/session"
)

const (
	msgReset     = "Контекст разговора сброшен. Начнём сначала!"
	msgAdminOnly = "Команда доступна только администратору."
	msgSlowDown  = "Слишком много сообщений, подождите немного."
	msgStored    = " В базе сохранено ответов: %d."
)

func userStatsText(c session.Counters) string {
	return fmt.Sprintf("Ваша статистика: по намерениям %d, из корпуса диалогов %d, не понято %d, всего %d.",
		c.Intent, c.Retrieval, c.Failure, c.Total())
}

func totalStatsText(c session.Counters, sessions int) string {
	return fmt.Sprintf("Сессий: %d. Ответы: по намерениям %d, из корпуса диалогов %d, не понято %d.",
		sessions, c.Intent, c.Retrieval, c.Failure)
}
