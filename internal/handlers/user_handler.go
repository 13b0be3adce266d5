package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/artursniegowski/Recipe-APP-API/internal/middleware"
	"github.com/artursniegowski/Recipe-APP-API/internal/models"
	"github.com/artursniegowski/Recipe-APP-API/internal/services"
)

// UserHandler handles registration, token issuance and the /me endpoint.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. create and token are public;
// me requires the auth middleware.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	user := router.Group("/user")
	user.Post("/create", h.HandleCreate)
	user.Post("/token", h.HandleToken)

	me := user.Group("/me", auth)
	me.Get("/", h.HandleGetMe)
	me.Put("/", h.HandleUpdateMe)
	me.Patch("/", h.HandleUpdateMe)
}

// userView is the serialized user shape. The password never appears.
type userView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserView(user *models.User) userView {
	return userView{Email: user.Email, Name: user.Name}
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// HandleCreate handles new user registration.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.authService.RegisterUser(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Registration failed",
				"errors":  fiber.Map{"email": "This email address already exists."},
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newUserView(user))
}

// TokenRequest is the token issuance payload.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleToken issues a bearer token. Any credential failure gets the
// same generic 400, with no hint about whether the email exists.
func (h *UserHandler) HandleToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing token request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	token, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unable to authenticate with provided credentials.",
		})
	}

	return c.JSON(fiber.Map{"token": token})
}

// HandleGetMe returns the authenticated caller's profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(middleware.CurrentUserID(c))
	if err != nil {
		log.Printf("Error getting current user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	return c.JSON(newUserView(user))
}

// UpdateUserRequest is the profile-update payload. Nil fields were not
// sent and stay untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=5"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
}

// HandleUpdateMe updates the authenticated caller's own profile. PUT
// requires the email field; PATCH is partial.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing profile update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}
	if c.Method() == fiber.MethodPut && req.Email == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"email": "This field is required."},
		})
	}

	user, err := h.authService.UpdateProfile(middleware.CurrentUserID(c), services.ProfileUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Update failed",
				"errors":  fiber.Map{"email": "This email address already exists."},
			})
		}
		log.Printf("Error updating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update user",
		})
	}

	return c.JSON(newUserView(user))
}
