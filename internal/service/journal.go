package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

type roomRepo interface {
	Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error)
}

type roundArchive interface {
	Save(ctx context.Context, round *entity.RoundView) error
}

// Journal - records committed room transitions: the latest snapshot goes to the
// room mirror, finished rounds go to the archive.
type Journal struct {
	logger   *slog.Logger
	roomRepo roomRepo
	archive  roundArchive
}

func NewJournal(logger *slog.Logger, roomRepo roomRepo, archive roundArchive) *Journal {
	return &Journal{
		logger:   logger.With("component", "journal"),
		roomRepo: roomRepo,
		archive:  archive,
	}
}

func (that *Journal) Record(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	log := that.logger.With("method", "Record", "roomID", event.RoomID, "version", event.Version)

	var errs []error

	saved, err := that.roomRepo.Save(ctx, snapshot)
	if err != nil {
		errs = append(errs, fmt.Errorf("mirror room: %w", err))
	} else if !saved {
		log.Debug("newer snapshot already stored")
	}

	if event.Outcome.IsTerminal() && snapshot.Round != nil {
		if err = that.archive.Save(ctx, snapshot.Round); err != nil {
			errs = append(errs, fmt.Errorf("archive round %s: %w", snapshot.Round.ID, err))
		}
	}

	return errors.Join(errs...)
}
