package memory

import (
	"context"
	"sync"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// TxManager serializes use cases so check-then-write sequences do not interleave.
// Nothing is rolled back on error; the services write only as their last step.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

var _ ports.Transactor = (*TxManager)(nil)
