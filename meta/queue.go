package meta

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

// Command is the kind of a change or event.
type Command string

const (
	Update Command = "UPDATE"
	Delete Command = "DELETE"
	Move   Command = "MOVE"
)

// Valid tells whether c is a known command.
func (c Command) Valid() bool {
	switch c {
	case Update, Delete, Move:
		return true
	}
	return false
}

// Change is a local change reported by a service, queued for the Referee.
type Change struct {
	ID      string  `json:"-"`
	FID     string  `json:"fid"`
	Command Command `json:"command"`
	Service string  `json:"service"`

	// NewFID is the id of the file after a move.
	NewFID string `json:"new_fid,omitempty"`

	// Malformed is set by Changes on records that could not be decoded.
	Malformed bool `json:"-"`
}

// Event is pending work for one service, queued by the Referee.
type Event struct {
	ID      string  `json:"-"`
	FID     string  `json:"fid"`
	Command Command `json:"command"`

	// Source is the service where the change happened.
	Source string `json:"source"`

	// NewFID is the id of the file after a move.
	NewFID string `json:"new_fid,omitempty"`
}

// Queue ids are time-ordered,
// so queues drain in arrival order,
// and a record written during a drain gets a key of its own.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generating queue id")
	}
	return id.String(), nil
}

// PutChange queues c for the Referee.
func PutChange(ctx context.Context, s kv.Store, c *Change) error {
	id, err := newID()
	if err != nil {
		return err
	}
	c.ID = id
	return errors.Wrapf(kv.PutJSON(ctx, s, ChangePrefix+id, c), "queueing %s of %s", c.Command, c.FID)
}

// Changes lists the Referee's queue in arrival order.
func Changes(ctx context.Context, s kv.Store) ([]*Change, error) {
	var result []*Change
	err := s.Range(ctx, kv.Range{Prefix: ChangePrefix}, func(key string, value []byte) error {
		c := new(Change)
		if err := json.Unmarshal(value, c); err != nil || !c.Command.Valid() || c.FID == "" {
			c = &Change{Malformed: true}
		}
		c.ID = strings.TrimPrefix(key, ChangePrefix)
		result = append(result, c)
		return nil
	})
	return result, errors.Wrap(err, "listing changes")
}

// DeleteChange removes a change from the Referee's queue.
func DeleteChange(ctx context.Context, s kv.Store, id string) error {
	return s.Delete(ctx, ChangePrefix+id)
}

// PutEvent adds to b the queueing of ev for service.
func PutEvent(b *kv.Batch, service string, ev *Event) error {
	id, err := newID()
	if err != nil {
		return err
	}
	ev.ID = id
	return b.PutJSON(EventPrefix(service)+id, ev)
}

// PendingEvents lists service's queued events,
// collapsed so that only the latest event for each fid remains,
// in arrival order of those latest events.
// It also returns the keys of every record it read,
// superseded ones included,
// for the caller to delete once it has taken the events.
// Undecodable records are skipped but their keys are returned.
func PendingEvents(ctx context.Context, s kv.Store, service string) ([]*Event, []string, error) {
	var (
		prefix = EventPrefix(service)
		keys   []string
		all    []*Event
		latest = make(map[string]int)
	)
	err := s.Range(ctx, kv.Range{Prefix: prefix}, func(key string, value []byte) error {
		keys = append(keys, key)
		ev := new(Event)
		if err := json.Unmarshal(value, ev); err != nil || !ev.Command.Valid() || ev.FID == "" {
			return nil
		}
		ev.ID = strings.TrimPrefix(key, prefix)
		latest[ev.FID] = len(all)
		all = append(all, ev)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listing events for %s", service)
	}

	var result []*Event
	for i, ev := range all {
		if latest[ev.FID] == i {
			result = append(result, ev)
		}
	}
	return result, keys, nil
}

// Transfer is the progress of an in-flight transfer of one file to one service.
type Transfer struct {
	FID    string `json:"-"`
	Source string `json:"source"`
	Offset int64  `json:"offset"`
}

// PutTransfer writes service's transfer record.
func PutTransfer(ctx context.Context, s kv.Store, service string, t *Transfer) error {
	return errors.Wrapf(kv.PutJSON(ctx, s, TransferKey(service, t.FID), t), "saving transfer of %s to %s", t.FID, service)
}

// GetTransfer reads service's transfer record for fid.
// The error is ErrNotFound if there is none.
func GetTransfer(ctx context.Context, s kv.Store, service, fid string) (*Transfer, error) {
	t := &Transfer{FID: fid}
	if err := kv.GetJSON(ctx, s, TransferKey(service, fid), t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTransfer removes service's transfer record for fid.
func DeleteTransfer(ctx context.Context, s kv.Store, service, fid string) error {
	return s.Delete(ctx, TransferKey(service, fid))
}

// Transfers lists service's transfer records.
func Transfers(ctx context.Context, s kv.Store, service string) ([]*Transfer, error) {
	var (
		prefix = TransferPrefix(service)
		result []*Transfer
	)
	err := s.Range(ctx, kv.Range{Prefix: prefix}, func(key string, value []byte) error {
		t := &Transfer{FID: strings.TrimPrefix(key, prefix)}
		if err := json.Unmarshal(value, t); err != nil {
			return errors.Wrapf(err, "decoding %s", key)
		}
		result = append(result, t)
		return nil
	})
	return result, errors.Wrapf(err, "listing transfers of %s", service)
}
