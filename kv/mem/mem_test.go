package mem

import (
	"context"
	"testing"

	"github.com/bobg/hub/kv/kvtest"
)

func TestStore(t *testing.T) {
	kvtest.Store(context.Background(), t, New())
}
