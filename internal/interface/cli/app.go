package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/neilberkman/tabrider/internal/core/config"
	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/history"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/session"
	"github.com/neilberkman/tabrider/internal/core/suspend"
)

// app bundles what every command opens
type app struct {
	cfg    *config.Config
	db     *db.DB
	codec  *suspend.Codec
	store  *session.Store
	titler session.Titler
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	database, err := db.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	codec := cfg.Codec()
	database.SetIndexURL(codec.Resume)

	policy := session.CascadeDelete
	if cfg.KeepEmptySessions {
		policy = session.KeepEmpty
	}

	return &app{
		cfg:   cfg,
		db:    database,
		codec: codec,
		store: session.NewStore(database, session.WithCodec(codec), session.WithEmptySessionPolicy(policy)),
		titler: session.Titler{
			SavedTemplate:   cfg.SavedTitleTemplate,
			HistoryTemplate: cfg.HistoryTitleTemplate,
		},
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// resolveSession finds a session by full id, unique id prefix, or the word
// "current" for the most recent unnamed session
func (a *app) resolveSession(ctx context.Context, ref string) (models.Session, error) {
	sessions, err := a.store.ListSessions(ctx)
	if err != nil {
		return models.Session{}, err
	}

	if ref == "current" {
		if cur := history.Partition(history.Sort(sessions)).Current; cur != nil {
			return *cur, nil
		}
		return models.Session{}, fmt.Errorf("no history sessions: %w", session.ErrNotFound)
	}

	var matches []models.Session
	for _, s := range sessions {
		if s.ID == ref {
			return s, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.Session{}, fmt.Errorf("session %s: %w", ref, session.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Session{}, fmt.Errorf("session prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// shortID abbreviates long session ids for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
