package logging

import (
	"context"
	"testing"

	"github.com/bobg/hub/kv/kvtest"
	"github.com/bobg/hub/kv/mem"
)

func TestStore(t *testing.T) {
	kvtest.Store(context.Background(), t, New(mem.New()))
}
