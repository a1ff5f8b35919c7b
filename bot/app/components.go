// Package app wires the dialogue engine to its data files, transports, stats
// sinks and the operational HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/toybot/bot/catalog"
	"github.com/m3rciful/toybot/bot/chance"
	"github.com/m3rciful/toybot/bot/dialog"
	"github.com/m3rciful/toybot/bot/extract"
	"github.com/m3rciful/toybot/bot/intent"
	"github.com/m3rciful/toybot/bot/model"
	"github.com/m3rciful/toybot/bot/phrasebook"
	"github.com/m3rciful/toybot/bot/retrieval"
	"github.com/m3rciful/toybot/bot/sentiment"
	"github.com/m3rciful/toybot/bot/session"
	"github.com/m3rciful/toybot/bot/text"
	coreconfig "github.com/m3rciful/toybot/core/config"
	"github.com/m3rciful/toybot/core/logger"
)

// Components are the loaded data and the engine built on top of it.
type Components struct {
	Catalog *catalog.Catalog
	Phrases *phrasebook.Phrasebook
	Norm    *text.Normalizer
	Model   *model.Model
	Store   *session.Store
	Engine  *dialog.Engine
}

// Build loads every data file named in cfg and assembles the engine. Any
// failure is fatal for startup.
func Build(ctx context.Context, cfg *coreconfig.Config) (*Components, error) {
	start := time.Now()

	cat, err := catalog.Load(cfg.Data.Catalog)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, logger.ComponentCatalog, "catalog.loaded",
		slog.String("path", cfg.Data.Catalog),
		slog.Int("toys", cat.Len()),
		slog.Int("categories", len(cat.Categories())),
	)

	phrases, err := phrasebook.Load(cfg.Data.Phrasebook)
	if err != nil {
		return nil, err
	}

	norm, err := NewNormalizer(cfg.Data)
	if err != nil {
		return nil, err
	}

	mdl, err := LoadModel(ctx, cfg.Data, norm, phrases)
	if err != nil {
		return nil, err
	}

	analyzer, err := sentiment.Load(cfg.Data.Sentiment, norm)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.Dialog.HistorySize)
	eng, err := dialog.New(dialog.Options{
		Catalog:                   cat,
		Phrases:                   phrases,
		Extractor:                 extract.New(cat, norm, cfg.Dialog.ToyMatchThreshold),
		Classifier:                intent.NewClassifier(mdl, phrases.Examples(), cfg.Dialog.IntentThreshold),
		Responder:                 retrieval.New(mdl, norm, cfg.Dialog.RetrievalThreshold),
		Sentiment:                 analyzer,
		Random:                    chance.New(cfg.Dialog.Seed),
		PromoProbability:          cfg.Dialog.PromoProbability,
		RetrievalPromoProbability: cfg.Dialog.RetrievalPromo,
	}, store)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, logger.ComponentDialog, "engine.ready",
		slog.Int("history", cfg.Dialog.HistorySize),
		slog.Int("lexicon", analyzer.Len()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Components{
		Catalog: cat,
		Phrases: phrases,
		Norm:    norm,
		Model:   mdl,
		Store:   store,
		Engine:  eng,
	}, nil
}

// NewNormalizer builds the normalizer for the configured lemmatizer.
func NewNormalizer(data coreconfig.DataConfig) (*text.Normalizer, error) {
	switch data.Lemmatizer {
	case coreconfig.LemmatizerSnowball:
		return text.NewNormalizer(text.Snowball{}), nil
	case coreconfig.LemmatizerDictionary:
		dict, err := text.LoadDictionary(data.Lemmas)
		if err != nil {
			return nil, err
		}
		return text.NewNormalizer(dict), nil
	default:
		return text.NewNormalizer(nil), nil
	}
}

// LoadModel reads the configured artifact or, when none is set, fits the
// models from the phrasebook examples and the dialogue corpus.
func LoadModel(ctx context.Context, data coreconfig.DataConfig, norm *text.Normalizer, phrases *phrasebook.Phrasebook) (*model.Model, error) {
	start := time.Now()
	source := "artifact"
	var (
		mdl *model.Model
		err error
	)
	if data.Model != "" {
		mdl, err = model.Load(data.Model)
	} else {
		source = "fit"
		mdl, err = FitModel(data, norm, phrases)
	}
	if err != nil {
		logger.Error(ctx, logger.ComponentModel, "model.load",
			slog.String("mode", source),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	logger.Info(ctx, logger.ComponentModel, "model.ready",
		slog.String("mode", source),
		slog.Int("labels", len(mdl.Labels())),
		slog.Int("count", mdl.CorpusSize()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return mdl, nil
}

// FitModel trains the intent and retrieval models from the data files.
func FitModel(data coreconfig.DataConfig, norm *text.Normalizer, phrases *phrasebook.Phrasebook) (*model.Model, error) {
	pairs, err := model.LoadDialogues(data.Dialogues)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrModelLoad, err)
	}
	for i := range pairs {
		pairs[i].Question = norm.Normalize(pairs[i].Question)
	}

	byIntent := phrases.Examples()
	var examples []model.Example
	for _, in := range intent.Classifiable() {
		for _, ex := range byIntent[in] {
			if cleaned := text.Clean(ex); cleaned != "" {
				examples = append(examples, model.Example{Label: in.String(), Text: cleaned})
			}
		}
	}
	return model.Fit(examples, pairs), nil
}
