package store

import (
	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"
)

// applyEvent folds one change-feed event into a cached record list. The
// feed delivers at least once, so every branch must tolerate replays:
// a duplicate insert is ignored, an update for an unknown ID is dropped,
// a delete for a missing ID is a no-op.
func applyEvent(files []model.File, ev gateway.Event) []model.File {
	switch ev.Kind {
	case gateway.EventInsert:
		for i := range files {
			if files[i].ID == ev.File.ID {
				return files
			}
		}
		return append(files, ev.File)

	case gateway.EventUpdate:
		for i := range files {
			if files[i].ID == ev.File.ID {
				files[i] = ev.File
				break
			}
		}
		return files

	case gateway.EventDelete:
		for i := range files {
			if files[i].ID == ev.File.ID {
				return append(files[:i], files[i+1:]...)
			}
		}
		return files
	}

	return files
}
