// File: cmd/demo/main.go
//
// Runs the verification flows end to end in test mode, with no Redis,
// Postgres, or gateway. Useful for eyeballing the panel state transitions
// before wiring a storefront.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/usecase"
	"cod-verifier/internal/verification"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	codes := newMemCodes()
	otpUC := usecase.NewOTPUseCase(usecase.OTPConfig{TestMode: true},
		[]model.Region{model.RegionIndia}, codes, nil, nil, log)
	tokenUC := usecase.NewTokenPaymentUseCase(usecase.TokenConfig{TestMode: true}, nil, nil, log)

	manager := verification.NewManager(verification.ManagerDeps{
		Requirements: model.VerificationRequirements{
			OTPEnabled:      true,
			TokenEnabled:    true,
			AllowedRegions:  []model.Region{model.RegionIndia},
			OTPTimerSeconds: 3,
			TestMode:        true,
		},
		OTPServer:   &usecase.OTPServerAdapter{UC: otpUC},
		OrderServer: &usecase.OrderServerAdapter{UC: tokenUC},
		Verifier:    &usecase.PaymentVerifierAdapter{UC: tokenUC},
		Logger:      &log,
	})

	ctx := context.Background()
	sess, err := manager.Create(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create session")
	}
	sess.Token.TestModeDelay = 0 // settle synchronously for the walkthrough
	dump("fresh session", sess)

	// --- OTP step ---
	sess.OTP.SetCountry(model.CountryIndia)
	sess.OTP.SetPhone("7039940998")
	if err := sess.OTP.Send(ctx); err != nil {
		log.Fatal().Err(err).Msg("send otp")
	}
	code := sess.OTP.TestCode()
	fmt.Printf("test-mode passcode: %s\n\n", code)

	sess.OTP.EnterCode(code)
	if err := sess.OTP.Verify(ctx); err != nil {
		log.Fatal().Err(err).Msg("verify otp")
	}
	dump("after OTP verification", sess)

	// --- Token step ---
	if err := sess.Token.Pay(ctx); err != nil {
		log.Fatal().Err(err).Msg("pay token")
	}
	dump("after test-mode token payment", sess)

	sess.Token.SetConfirmed(true)
	dump("after confirmation checkbox", sess)

	manager.Drop(ctx, sess.ID)
}

func dump(label string, sess *verification.Session) {
	st := sess.Status()
	mk := sess.Markers()
	fmt.Printf("== %s ==\n", label)
	fmt.Printf("  otp: %-8s  token: %-8s\n", st.OTPBadge, st.TokenBadge)
	fmt.Printf("  send=%q verify=%q pay=%q\n", st.SendLabel, st.VerifyLabel, st.PayLabel)
	fmt.Printf("  markers: otp_verified=%v token_verified=%v\n", mk.OTPVerified, mk.TokenVerified)
	fmt.Printf("  place order enabled: %v\n\n", st.PlaceOrderEnabled)
}
