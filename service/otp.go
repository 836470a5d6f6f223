package service

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.lumeweb.com/accountd/core"
)

var _ core.OTPService = (*OTPServiceDefault)(nil)

const otpIssuer = "accountd"

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.OTP_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			return NewOTPService(), nil, nil
		},
	})
}

// OTPServiceDefault derives one-shot codes from a throwaway TOTP secret. The
// secret is discarded, so codes cannot be checked later.
type OTPServiceDefault struct {
	now func() time.Time
}

func NewOTPService() *OTPServiceDefault {
	return &OTPServiceDefault{now: time.Now}
}

func (o *OTPServiceDefault) ID() string {
	return core.OTP_SERVICE
}

func (o *OTPServiceDefault) OTPGenerate() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: "password-reset",
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", core.NewAccountError(core.ErrKeyOTPGenerationFailed, err)
	}

	code, err := totp.GenerateCodeCustom(key.Secret(), o.now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", core.NewAccountError(core.ErrKeyOTPGenerationFailed, err)
	}

	return code, nil
}
