package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/middleware"
	"github.com/meinhoongagan/booking-platform/usecase"
	"github.com/meinhoongagan/booking-platform/utils"
)

type AuthController struct {
	identity *usecase.IdentityUsecase
	log      *zap.Logger
}

func NewAuthController(identity *usecase.IdentityUsecase, log *zap.Logger) *AuthController {
	return &AuthController{identity: identity, log: log}
}

type otpRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Channel string `json:"channel"`
}

// SendVerificationOTP sends the code that Register expects.
func (h *AuthController) SendVerificationOTP(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	ch, err := h.identity.SendVerificationOTP(c.UserContext(), in.Email, in.Phone, in.Channel)
	if err != nil {
		return fail(c, h.log, "Failed to send verification code", err)
	}
	return c.JSON(fiber.Map{"message": "Verification code sent", "channel": ch})
}

func (h *AuthController) Register(c *fiber.Ctx) error {
	var in usecase.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	sess, err := h.identity.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, h.log, "Failed to register", err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// Login checks credentials and starts the OTP step.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Channel  string `json:"channel"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	challenge, err := h.identity.Login(c.UserContext(), in.Email, in.Password, in.Channel)
	if err != nil {
		return fail(c, h.log, "Login failed", err)
	}
	return c.JSON(challenge)
}

func (h *AuthController) LoginVerify(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	sess, err := h.identity.LoginVerify(c.UserContext(), in.Email, in.OTP)
	if err != nil {
		return fail(c, h.log, "Verification failed", err)
	}
	return c.JSON(sess)
}

func (h *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var in otpRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	ch, err := h.identity.ForgotPassword(c.UserContext(), in.Email, in.Channel)
	if err != nil {
		return fail(c, h.log, "Failed to send reset code", err)
	}
	return c.JSON(fiber.Map{"message": "Reset code sent", "channel": ch})
}

func (h *AuthController) ResetPassword(c *fiber.Ctx) error {
	var in struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	if err := h.identity.ResetPassword(c.UserContext(), in.Email, in.OTP, in.NewPassword); err != nil {
		return fail(c, h.log, "Failed to reset password", err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *AuthController) UpdatePassword(c *fiber.Ctx) error {
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	if err := h.identity.UpdatePassword(c.UserContext(), middleware.UserID(c), in.CurrentPassword, in.NewPassword); err != nil {
		return fail(c, h.log, "Failed to update password", err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *AuthController) RefreshToken(c *fiber.Ctx) error {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", err)
	}
	sess, err := h.identity.Refresh(c.UserContext(), in.RefreshToken)
	if err != nil {
		return fail(c, h.log, "Failed to refresh token", err)
	}
	return c.JSON(sess)
}
