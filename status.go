package hub

import (
	"context"
	stderrs "errors"
	"fmt"
	"io"

	"github.com/bobg/hub/folder"
	"github.com/bobg/hub/kv"
	"github.com/bobg/hub/meta"
)

// Status is a snapshot of a deployment's synchronization state.
type Status struct {
	// Changes is the number of changes waiting for the Referee.
	Changes int

	// Files is the number of known files.
	Files int

	Services []*ServiceStatus
}

// ServiceStatus is the state of one service.
type ServiceStatus struct {
	Name string

	// Router is the published address of the service's router, if any.
	Router string

	// Events is the number of events waiting for the service's Dealer.
	Events int

	// Transfers are the service's unfinished transfers.
	Transfers []*meta.Transfer

	// Uptodate is the number of files the service holds a current copy of.
	Uptodate int

	// Owned is the number of files the service owns.
	Owned int
}

// GetStatus reads the state of the deployment from s.
func GetStatus(ctx context.Context, s kv.Store) (*Status, error) {
	changes, err := meta.Changes(ctx, s)
	if err != nil {
		return nil, err
	}
	result := &Status{Changes: len(changes)}

	names, err := folder.Services(ctx, s)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*ServiceStatus)
	for _, name := range names {
		ss := &ServiceStatus{Name: name}

		addr, err := s.Get(ctx, meta.RouterKey(name))
		switch {
		case stderrs.Is(err, kv.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			ss.Router = string(addr)
		}

		_, keys, err := meta.PendingEvents(ctx, s, name)
		if err != nil {
			return nil, err
		}
		ss.Events = len(keys)

		if ss.Transfers, err = meta.Transfers(ctx, s, name); err != nil {
			return nil, err
		}

		byName[name] = ss
		result.Services = append(result.Services, ss)
	}

	err = meta.ForEach(ctx, s, func(f *meta.File) error {
		result.Files++
		for svc := range f.Owners {
			if ss, ok := byName[svc]; ok {
				ss.Owned++
			}
		}
		for svc := range f.Uptodate {
			if ss, ok := byName[svc]; ok {
				ss.Uptodate++
			}
		}
		return nil
	})
	return result, err
}

// Write prints st in human-readable form.
func (st *Status) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d files, %d changes pending\n", st.Files, st.Changes); err != nil {
		return err
	}
	for _, ss := range st.Services {
		router := ss.Router
		if router == "" {
			router = "-"
		}
		_, err := fmt.Fprintf(w, "%s: router %s, %d owned, %d up to date, %d events pending, %d transfers\n", ss.Name, router, ss.Owned, ss.Uptodate, ss.Events, len(ss.Transfers))
		if err != nil {
			return err
		}
		for _, t := range ss.Transfers {
			if _, err = fmt.Fprintf(w, "  %s from %s at offset %d\n", t.FID, t.Source, t.Offset); err != nil {
				return err
			}
		}
	}
	return nil
}
