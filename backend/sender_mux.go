package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type SenderMultiplexer struct {
	lock   sync.RWMutex
	sender map[string]Sender
}

var _ SenderMux = (*SenderMultiplexer)(nil)

func NewSenderMux() *SenderMultiplexer {
	return &SenderMultiplexer{
		sender: map[string]Sender{},
	}
}

// NewNoopSenderMux register no-op sender for every known service.
func NewNoopSenderMux() *SenderMultiplexer {
	mux := NewSenderMux()
	mux.MustRegister(ServiceAPNS, NewNoopSender(ServiceAPNS))
	mux.MustRegister(ServiceGCM, NewNoopSender(ServiceGCM))
	return mux
}

func (s *SenderMultiplexer) MustRegister(service string, sender Sender) {
	err := s.Register(service, sender)
	if err != nil {
		panic(err)
	}
}

func (s *SenderMultiplexer) Register(service string, sender Sender) (err error) {
	service = strings.TrimSpace(service)
	if service == "" {
		err = fmt.Errorf("cannot assign empty service name")
		return
	}

	if service != strings.ToLower(service) {
		err = fmt.Errorf("service name must only contain lower case")
		return
	}

	if !utf8.ValidString(service) {
		err = fmt.Errorf("service name must only use utf8 characters")
		return
	}

	if sender == nil {
		err = fmt.Errorf("cannot assign nil sender")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exist := s.sender[service]; exist {
		err = fmt.Errorf("%w '%s'", ErrServiceAlreadyRegistered, service)
		return
	}

	s.sender[service] = sender
	return
}

func (s *SenderMultiplexer) Send(ctx context.Context, batch *Batch) (report *Report, err error) {
	ctx, span := tracer.StartSpan(ctx, "backend.Send")
	defer span.End()

	if batch == nil {
		err = fmt.Errorf("%w: passed batch is nil, we cannot process that", ErrInvalidBatch)
		return
	}

	err = validator.Validate(batch)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidBatch, err)
		return
	}

	s.lock.RLock()
	client, exist := s.sender[batch.Service]
	s.lock.RUnlock()

	if !exist {
		err = fmt.Errorf("%w: '%s'", ErrServiceNotRegistered, batch.Service)
		return
	}

	err = client.ValidatePayload(ctx, batch.Payload)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidBatch, err)
		return
	}

	return client.Send(ctx, batch)
}

func (s *SenderMultiplexer) Services(_ context.Context) (services []string) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	services = make([]string, 0, len(s.sender))
	for service := range s.sender {
		services = append(services, service)
	}

	sort.Strings(services)
	return
}
