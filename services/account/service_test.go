package account

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/triologic/medrec/testutils"
	"gorm.io/gorm"
)

type captureMail struct {
	toEmail  string
	subject  string
	textBody string
	sends    int
	fail     bool
}

func (m *captureMail) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.toEmail = toEmail
	m.subject = subject
	m.textBody = textBody
	m.sends++
	return nil
}

var codePattern = regexp.MustCompile(`code is: (\d{6})`)

func (m *captureMail) lastCode(t *testing.T) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(m.textBody)
	require.Len(t, match, 2, "verification code not found in email body")
	return match[1]
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

func (m *captureMail) lastToken(t *testing.T) string {
	t.Helper()
	match := tokenPattern.FindStringSubmatch(m.textBody)
	require.Len(t, match, 2, "reset token not found in email body")
	return match[1]
}

func newTestService(t *testing.T) (*Service, *captureMail) {
	t.Helper()
	db := testutils.SetupTestDB(t, &Doctor{}, &VerificationCode{}, &ResetToken{})
	svc := NewService(testutils.GetTestConfig(), db, nil)
	mailer := &captureMail{}
	svc.SetMailService(mailer)
	return svc, mailer
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName: "Amira",
		LastName:  "Hassan",
		Username:  "amira.hassan",
		Email:     "amira@example.com",
		Password:  "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates unverified account and emails a code", func(t *testing.T) {
		svc, mailer := newTestService(t)

		doctor, emailSent, err := svc.Register(validInput())
		require.NoError(t, err)
		assert.True(t, emailSent)
		assert.False(t, doctor.IsVerified)
		assert.Equal(t, "amira@example.com", mailer.toEmail)
		assert.Regexp(t, `\d{6}`, mailer.lastCode(t))
	})

	t.Run("rejects invalid usernames", func(t *testing.T) {
		svc, _ := newTestService(t)

		for _, username := range []string{"ab", "has space", "way-too-long-for-a-username-here", "bad!char"} {
			input := validInput()
			input.Username = username
			_, _, err := svc.Register(input)
			assert.Error(t, err, "username %q should be rejected", username)
		}
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc, _ := newTestService(t)

		input := validInput()
		input.Password = "short"
		_, _, err := svc.Register(input)
		assert.ErrorContains(t, err, "at least 8 characters")
	})

	t.Run("rejects duplicate username or email", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, _, err := svc.Register(validInput())
		require.NoError(t, err)

		dup := validInput()
		dup.Email = "other@example.com"
		_, _, err = svc.Register(dup)
		assert.ErrorIs(t, err, ErrDuplicateAccount)

		dup = validInput()
		dup.Username = "otheruser"
		_, _, err = svc.Register(dup)
		assert.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("mail failure still creates the account", func(t *testing.T) {
		svc, mailer := newTestService(t)
		mailer.fail = true

		doctor, emailSent, err := svc.Register(validInput())
		require.NoError(t, err)
		assert.False(t, emailSent)
		assert.NotZero(t, doctor.ID)
	})
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: doctors.username")))
	assert.True(t, isDuplicateKey(errors.New(`duplicate key value violates unique constraint "idx_doctors_email"`)))
	assert.False(t, isDuplicateKey(errors.New("connection reset")))

	// A race past the pre-insert count check hits the unique index; the
	// driver error it produces must map to the duplicate-account conflict.
	svc, _ := newTestService(t)
	_, _, err := svc.Register(validInput())
	require.NoError(t, err)

	err = svc.db.Create(&Doctor{
		FirstName:    "Amira",
		LastName:     "Hassan",
		Username:     "amira.hassan",
		Email:        "other@example.com",
		PasswordHash: "x",
	}).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
}

func TestVerifyCode(t *testing.T) {
	t.Run("verifies with the emailed code", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)

		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))

		doctor, err := svc.Authenticate("amira.hassan", "correct-horse")
		require.NoError(t, err)
		assert.True(t, doctor.IsVerified)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newTestService(t)
		assert.ErrorIs(t, svc.VerifyCode("nobody@example.com", "123456"), ErrAccountNotFound)
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)

		wrong := "000000"
		if mailer.lastCode(t) == wrong {
			wrong = "000001"
		}
		assert.ErrorIs(t, svc.VerifyCode("amira@example.com", wrong), ErrCodeInvalid)
	})

	t.Run("expired code", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)

		err = svc.db.Model(&VerificationCode{}).
			Where("1 = 1").
			Update("expires_at", time.Now().Add(-time.Minute)).Error
		require.NoError(t, err)

		assert.ErrorIs(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)), ErrCodeExpired)
	})

	t.Run("already verified short-circuits", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)
		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))

		assert.NoError(t, svc.VerifyCode("amira@example.com", "garbage"))
	})

	t.Run("resend invalidates the previous code", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)
		oldCode := mailer.lastCode(t)

		sent, err := svc.ResendCode("amira@example.com")
		require.NoError(t, err)
		assert.True(t, sent)

		newCode := mailer.lastCode(t)
		if oldCode != newCode {
			assert.ErrorIs(t, svc.VerifyCode("amira@example.com", oldCode), ErrCodeInvalid)
		}
		assert.NoError(t, svc.VerifyCode("amira@example.com", newCode))
	})

	t.Run("resend surfaces mail failures", func(t *testing.T) {
		db := testutils.SetupTestDB(t, &Doctor{}, &VerificationCode{}, &ResetToken{})
		svc := NewService(testutils.GetTestConfig(), db, nil)

		mailer := new(testutils.MockMailService)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp unavailable"))
		svc.SetMailService(mailer)

		_, _, err := svc.Register(validInput())
		require.NoError(t, err)

		_, err = svc.ResendCode("amira@example.com")
		assert.ErrorIs(t, err, ErrMailSendFailed)
		mailer.AssertExpectations(t)
	})

	t.Run("resend after verification is a no-op", func(t *testing.T) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)
		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))

		sent, err := svc.ResendCode("amira@example.com")
		require.NoError(t, err)
		assert.False(t, sent)
	})
}

func TestAuthenticate(t *testing.T) {
	setup := func(t *testing.T) (*Service, *captureMail) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)
		return svc, mailer
	}

	t.Run("unknown username and wrong password report the same error", func(t *testing.T) {
		svc, _ := setup(t)

		_, errUnknown := svc.Authenticate("ghost", "correct-horse")
		_, errWrongPw := svc.Authenticate("amira.hassan", "wrong")
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	})

	t.Run("unverified account with valid password", func(t *testing.T) {
		svc, _ := setup(t)

		doctor, err := svc.Authenticate("amira.hassan", "correct-horse")
		assert.ErrorIs(t, err, ErrNotVerified)
		require.NotNil(t, doctor)
	})

	t.Run("verified account", func(t *testing.T) {
		svc, mailer := setup(t)
		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))

		doctor, err := svc.Authenticate("amira.hassan", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "amira.hassan", doctor.Username)
	})
}

func TestPasswordReset(t *testing.T) {
	setup := func(t *testing.T) (*Service, *captureMail) {
		svc, mailer := newTestService(t)
		_, _, err := svc.Register(validInput())
		require.NoError(t, err)
		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))
		return svc, mailer
	}

	t.Run("unknown email succeeds without sending", func(t *testing.T) {
		svc, mailer := setup(t)
		sends := mailer.sends

		require.NoError(t, svc.RequestPasswordReset("ghost@example.com"))
		assert.Equal(t, sends, mailer.sends)
	})

	t.Run("mail outage still reports generic success", func(t *testing.T) {
		svc, mailer := setup(t)
		mailer.fail = true

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"),
			"a registered email must not be distinguishable by a send failure")

		var count int64
		require.NoError(t, svc.db.Model(&ResetToken{}).Count(&count).Error)
		assert.EqualValues(t, 1, count, "the token is still issued for a later retry")
	})

	t.Run("full reset flow", func(t *testing.T) {
		svc, mailer := setup(t)

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"))
		token := mailer.lastToken(t)

		require.NoError(t, svc.ResetPassword(token, "brand-new-password"))

		_, err := svc.Authenticate("amira.hassan", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Authenticate("amira.hassan", "brand-new-password")
		assert.NoError(t, err)
	})

	t.Run("token is single use", func(t *testing.T) {
		svc, mailer := setup(t)

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"))
		token := mailer.lastToken(t)

		require.NoError(t, svc.ResetPassword(token, "brand-new-password"))
		assert.ErrorIs(t, svc.ResetPassword(token, "another-password"), ErrResetTokenUsed)
	})

	t.Run("new request invalidates the previous token", func(t *testing.T) {
		svc, mailer := setup(t)

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"))
		firstToken := mailer.lastToken(t)

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"))
		assert.ErrorIs(t, svc.ResetPassword(firstToken, "brand-new-password"), ErrResetTokenInvalid)
	})

	t.Run("expired token is deleted on access", func(t *testing.T) {
		svc, mailer := setup(t)

		require.NoError(t, svc.RequestPasswordReset("amira@example.com"))
		token := mailer.lastToken(t)

		err := svc.db.Model(&ResetToken{}).
			Where("1 = 1").
			Update("expires_at", time.Now().Add(-time.Minute)).Error
		require.NoError(t, err)

		assert.ErrorIs(t, svc.ResetPassword(token, "brand-new-password"), ErrResetTokenExpired)
		assert.ErrorIs(t, svc.ResetPassword(token, "brand-new-password"), ErrResetTokenInvalid)
	})

	t.Run("short token and short password", func(t *testing.T) {
		svc, _ := setup(t)

		assert.ErrorContains(t, svc.ResetPassword("any-token-long-enough-to-look-up", "short"), "at least 8 characters")
		assert.ErrorIs(t, svc.ResetPassword("tiny", "brand-new-password"), ErrResetTokenInvalid)
	})
}

func TestProfileAndPassword(t *testing.T) {
	setup := func(t *testing.T) (*Service, uint) {
		svc, mailer := newTestService(t)
		doctor, _, err := svc.Register(validInput())
		require.NoError(t, err)
		require.NoError(t, svc.VerifyCode("amira@example.com", mailer.lastCode(t)))
		return svc, doctor.ID
	}

	t.Run("update profile fields", func(t *testing.T) {
		svc, doctorID := setup(t)

		spec := "Cardiology"
		phone := "5551234"
		doctor, err := svc.UpdateProfile(doctorID, ProfileInput{
			Specialization: &spec,
			PhoneNumber:    &phone,
		})
		require.NoError(t, err)
		assert.Equal(t, "Cardiology", doctor.Specialization)
		assert.Equal(t, "5551234", doctor.PhoneNumber)
		assert.Equal(t, "Amira", doctor.FirstName)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		svc, doctorID := setup(t)

		other := validInput()
		other.Username = "otherdoc"
		other.Email = "other@example.com"
		_, _, err := svc.Register(other)
		require.NoError(t, err)

		email := "other@example.com"
		_, err = svc.UpdateProfile(doctorID, ProfileInput{Email: &email})
		assert.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("change password requires the current one", func(t *testing.T) {
		svc, doctorID := setup(t)

		assert.ErrorIs(t, svc.ChangePassword(doctorID, "wrong", "new-password-1"), ErrInvalidCredentials)
		require.NoError(t, svc.ChangePassword(doctorID, "correct-horse", "new-password-1"))

		_, err := svc.Authenticate("amira.hassan", "new-password-1")
		assert.NoError(t, err)
	})
}
