package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/bobg/hub"
)

func (c maincmd) status(ctx context.Context, asJSON bool, _ []string) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	st, err := hub.GetStatus(ctx, s)
	if err != nil {
		return errors.Wrap(err, "getting status")
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return st.Write(os.Stdout)
}
