package mock

import (
	"context"

	"github.com/zflorman/Hillpulse-v3/internal/notify/email"
)

type Sender struct {
	Sent []email.Message
	Err  error
}

func (s *Sender) Send(ctx context.Context, message email.Message) error {
	_ = ctx
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, message)
	return nil
}
