package core

const OTP_SERVICE = "otp"

const OTP_DIGITS = 6

type OTPService interface {
	// OTPGenerate returns a fresh numeric recovery code.
	OTPGenerate() (string, error)

	Service
}
