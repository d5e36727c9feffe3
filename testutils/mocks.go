package testutils

import (
	"github.com/stretchr/testify/mock"
)

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	args := m.Called(toEmail, toName, subject, htmlBody, textBody)
	return args.Error(0)
}
