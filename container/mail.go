package container

import (
	"fmt"

	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/pkg/mailclient"
)

// Mail creates job creator notifier, it returns nil service when mail.enable is false.
// The smtp client is closed by Container.Close.
func (c *Container) Mail() (mail mailsvc.Service, err error) {
	conf := c.conf.Mail
	if !conf.Enable {
		return nil, nil
	}

	client, err := mailclient.NewSMTP(mailclient.SMTPConfig{
		Host:     conf.Host,
		Port:     conf.Port,
		Username: conf.Username,
		Password: conf.Password,
	})
	if err != nil {
		err = fmt.Errorf("mail client: %w", err)
		return
	}

	svc, err := mailsvc.New(mailsvc.DefaultServiceConfig{
		Client: client,
		Sender: conf.Sender,
	})
	if err != nil {
		_ = client.Close()
		err = fmt.Errorf("mail service: %w", err)
		return
	}

	c.register(NewNamedCloser("mail client smtp", client))
	return svc, nil
}
