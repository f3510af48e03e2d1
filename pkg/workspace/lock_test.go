package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("diagram-%d", i)
		_ = mgr.Save(ctx, id, domain.NewDiagram())
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("lock leak: %d entries remain after Delete", n)
	}
}
