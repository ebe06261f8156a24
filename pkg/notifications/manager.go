package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Provider interface {
	name() string
	send(ctx context.Context, msg Message) error
}

type Manager interface {
	Send(ctx context.Context, msg Message) error
	AddProvider(provider Provider)
}

// ManagerImpl delivers every message to all providers before returning,
// the hosting process may be frozen once the event is acknowledged
type ManagerImpl struct {
	provider []Provider
}

type DummyManagerImpl struct {
}

func NewManager() *ManagerImpl {
	return &ManagerImpl{
		provider: []Provider{},
	}
}

func NewDummyManager() *DummyManagerImpl {
	return &DummyManagerImpl{}
}

func (m *ManagerImpl) AddProvider(provider Provider) {
	m.provider = append(m.provider, provider)
}

func (m *ManagerImpl) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, p := range m.provider {
		err := p.send(ctx, msg)
		if err != nil {
			logrus.Warnf("cannot send notification to %s: %s", p.name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.name(), err))
		}
	}

	return errors.Join(errs...)
}

func (m *DummyManagerImpl) Send(ctx context.Context, msg Message) error {
	return nil
}

func (m *DummyManagerImpl) AddProvider(provider Provider) {
}
