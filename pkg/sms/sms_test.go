package sms_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianvault/backoffice/pkg/sms"
)

func TestSendSMSParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  sms.SendSMSParams
		wantErr bool
	}{
		{
			name:   "valid E.164 with plus",
			params: sms.SendSMSParams{SendTo: "+15551234567", Message: "hello"},
		},
		{
			name:   "valid without plus",
			params: sms.SendSMSParams{SendTo: "4478700900123", Message: "hello"},
		},
		{
			name:    "empty destination",
			params:  sms.SendSMSParams{Message: "hello"},
			wantErr: true,
		},
		{
			name:    "leading zero",
			params:  sms.SendSMSParams{SendTo: "+05551234567", Message: "hello"},
			wantErr: true,
		},
		{
			name:    "letters in number",
			params:  sms.SendSMSParams{SendTo: "+1555CALLNOW", Message: "hello"},
			wantErr: true,
		},
		{
			name:    "empty message",
			params:  sms.SendSMSParams{SendTo: "+15551234567"},
			wantErr: true,
		},
		{
			name:    "oversized message",
			params:  sms.SendSMSParams{SendTo: "+15551234567", Message: strings.Repeat("x", 161)},
			wantErr: true,
		},
		{
			name:   "boundary message length",
			params: sms.SendSMSParams{SendTo: "+15551234567", Message: strings.Repeat("x", 160)},
		},
		{
			// 160 characters, 320 bytes: the limit counts characters.
			name:   "multibyte message at the boundary",
			params: sms.SendSMSParams{SendTo: "+15551234567", Message: strings.Repeat("é", 160)},
		},
		{
			name:    "oversized multibyte message",
			params:  sms.SendSMSParams{SendTo: "+15551234567", Message: strings.Repeat("é", 161)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, sms.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	t.Parallel()

	assert.True(t, sms.ValidPhone("+15551234567"))
	assert.False(t, sms.ValidPhone(""))
	assert.False(t, sms.ValidPhone("+0123"))
	assert.False(t, sms.ValidPhone("not-a-phone"))
}

func TestNewTwilioClient_ConfigValidation(t *testing.T) {
	t.Parallel()

	valid := sms.Config{
		TwilioAccountSID: "ACxxxxxxxx",
		TwilioAuthToken:  "token",
		SenderNumber:     "+15005550006",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		sender, err := sms.NewTwilioClient(valid)
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("missing account sid", func(t *testing.T) {
		t.Parallel()
		cfg := valid
		cfg.TwilioAccountSID = ""
		_, err := sms.NewTwilioClient(cfg)
		assert.ErrorIs(t, err, sms.ErrInvalidConfig)
	})

	t.Run("invalid sender number", func(t *testing.T) {
		t.Parallel()
		cfg := valid
		cfg.SenderNumber = "nope"
		_, err := sms.NewTwilioClient(cfg)
		assert.ErrorIs(t, err, sms.ErrInvalidConfig)
	})
}

func TestDevSender_ReturnsMessageID(t *testing.T) {
	t.Parallel()

	sender := sms.NewDevSender(nil)
	msgID, err := sender.SendSMS(context.Background(), sms.SendSMSParams{
		SendTo:  "+15551234567",
		Message: "Your SKR-0001 has been issued.",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msgID, "dev-"))
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	sender := sms.NewDevSender(nil)
	_, err := sender.SendSMS(context.Background(), sms.SendSMSParams{SendTo: "bad"})
	assert.ErrorIs(t, err, sms.ErrInvalidParams)
}
