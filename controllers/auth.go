package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studyquest/config"
	"studyquest/db"
	"studyquest/models"
	"studyquest/store"
	"studyquest/structs"
	"studyquest/utils"
)

// AuthController fronts the identity provider: sign-up, email verification,
// login, password reset and sign-out. On a successful login it points a store
// at the user's document and issues a session token.
type AuthController struct {
	cfg     *config.Config
	db      *db.Database
	stores  *store.Manager
	cognito *cognitoidentityprovider.Client
}

func NewAuthController(cfg *config.Config, database *db.Database, stores *store.Manager) (*AuthController, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(cfg.Cognito.Region))
	if err != nil {
		return nil, err
	}
	return &AuthController{
		cfg:     cfg,
		db:      database,
		stores:  stores,
		cognito: cognitoidentityprovider.NewFromConfig(awsCfg),
	}, nil
}

func (a *AuthController) SignUp(ctx *gin.Context) {
	var request structs.SignUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	secretHash := utils.GenerateSecretHash(request.Email, a.cfg.Cognito.AppClientId, a.cfg.Cognito.AppClientSecret)
	out, err := a.cognito.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(a.cfg.Cognito.AppClientId),
		Password:   aws.String(request.Password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(request.Email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(request.Email)},
			{Name: aws.String("nickname"), Value: aws.String(request.Username)},
		},
	})
	if err != nil {
		log.Println("Error during sign-up:", err)
		status, message := mapCognitoError(err)
		ctx.JSON(status, gin.H{"error": "Failed to sign up", "message": message})
		return
	}

	uid := aws.ToString(out.UserSub)
	profile := newProfile(uid, request.Username, request.Email)
	if _, err := a.db.CreateProfile(ctx, profile); err != nil {
		log.Printf("Failed to create profile for %s: %v", uid, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sign-up successful. Check your email for a verification code."})
}

func (a *AuthController) VerifyEmail(ctx *gin.Context) {
	var request structs.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	secretHash := utils.GenerateSecretHash(request.Email, a.cfg.Cognito.AppClientId, a.cfg.Cognito.AppClientSecret)
	_, err := a.cognito.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(a.cfg.Cognito.AppClientId),
		ConfirmationCode: aws.String(request.ConfirmationCode),
		SecretHash:       aws.String(secretHash),
		Username:         aws.String(request.Email),
	})
	if err != nil {
		log.Println("Error during email verification:", err)
		status, message := mapCognitoError(err)
		ctx.JSON(status, gin.H{"error": "Failed to verify email", "message": message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email verification successful"})
}

func (a *AuthController) Login(ctx *gin.Context) {
	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	secretHash := utils.GenerateSecretHash(request.Email, a.cfg.Cognito.AppClientId, a.cfg.Cognito.AppClientSecret)
	_, err := a.cognito.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.cfg.Cognito.AppClientId),
		AuthParameters: map[string]string{
			"USERNAME":    request.Email,
			"PASSWORD":    request.Password,
			"SECRET_HASH": secretHash,
		},
	})
	if err != nil {
		log.Println("Error during sign-in:", err)
		status, message := mapCognitoError(err)
		ctx.JSON(status, gin.H{"error": "Failed to sign in", "message": message})
		return
	}

	profile, err := a.db.FindByEmail(ctx, request.Email)
	if err != nil {
		log.Printf("Failed to look up profile for %s: %v", request.Email, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if profile == nil {
		// Identity exists at the provider but has no document yet.
		username := utils.ExtractNameFromEmail(request.Email)
		created := newProfile(primitive.NewObjectID().Hex(), username, request.Email)
		profile = &created
		if _, err := a.db.CreateProfile(ctx, created); err != nil {
			log.Printf("Failed to create profile for %s: %v", request.Email, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
			return
		}
	}

	// Bind a store to the identity and apply the daily streak rule.
	s, err := a.stores.Store(ctx, profile.UID)
	if err != nil {
		log.Printf("Failed to bind store for %s: %v", profile.UID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	s.TouchLogin(time.Now())

	token, err := utils.GenerateJWTToken(profile.UID, profile.Email)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sign-in successful", "accessToken": token, "uid": profile.UID})
}

func (a *AuthController) ForgotPassword(ctx *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	secretHash := utils.GenerateSecretHash(request.Email, a.cfg.Cognito.AppClientId, a.cfg.Cognito.AppClientSecret)
	_, err := a.cognito.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(a.cfg.Cognito.AppClientId),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(request.Email),
	})
	if err != nil {
		log.Println("Error initiating password reset:", err)
		status, message := mapCognitoError(err)
		ctx.JSON(status, gin.H{"error": "Failed to initiate password reset", "message": message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func (a *AuthController) ConfirmForgotPassword(ctx *gin.Context) {
	var request structs.VerifyForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	secretHash := utils.GenerateSecretHash(request.Email, a.cfg.Cognito.AppClientId, a.cfg.Cognito.AppClientSecret)
	_, err := a.cognito.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(a.cfg.Cognito.AppClientId),
		ConfirmationCode: aws.String(request.Code),
		Password:         aws.String(request.NewPassword),
		SecretHash:       aws.String(secretHash),
		Username:         aws.String(request.Email),
	})
	if err != nil {
		log.Println("Error confirming password reset:", err)
		status, message := mapCognitoError(err)
		ctx.JSON(status, gin.H{"error": "Failed to confirm password reset", "message": message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

// SignOut flushes and releases the caller's store. The identity switch away
// from the user is the point where unsaved mutations must hit storage.
func (a *AuthController) SignOut(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	a.stores.Release(ctx, uid)
	ctx.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func newProfile(uid, username, email string) models.UserProfile {
	now := time.Now()
	return models.UserProfile{
		UID:           uid,
		Username:      username,
		Email:         email,
		DisplayName:   username,
		XP:            0,
		Level:         1,
		Streak:        0,
		Achievements:  models.DefaultAchievements(),
		PowerUps:      models.DefaultPowerUps(),
		CreatedAt:     now,
		LastLoginDate: now,
	}
}

// mapCognitoError translates provider error codes into stable user-facing
// messages and HTTP statuses.
func mapCognitoError(err error) (int, string) {
	var (
		userNotFound     *types.UserNotFoundException
		notAuthorized    *types.NotAuthorizedException
		usernameExists   *types.UsernameExistsException
		invalidPassword  *types.InvalidPasswordException
		invalidParameter *types.InvalidParameterException
		codeMismatch     *types.CodeMismatchException
		expiredCode      *types.ExpiredCodeException
		notConfirmed     *types.UserNotConfirmedException
		limitExceeded    *types.LimitExceededException
		tooManyRequests  *types.TooManyRequestsException
	)
	switch {
	case errors.As(err, &userNotFound):
		return http.StatusNotFound, "No account found with this email"
	case errors.As(err, &notAuthorized):
		return http.StatusUnauthorized, "Incorrect email or password"
	case errors.As(err, &usernameExists):
		return http.StatusConflict, "An account with this email already exists"
	case errors.As(err, &invalidPassword):
		return http.StatusBadRequest, "Password is too weak"
	case errors.As(err, &invalidParameter):
		return http.StatusBadRequest, "Invalid email address"
	case errors.As(err, &codeMismatch):
		return http.StatusBadRequest, "Invalid verification code"
	case errors.As(err, &expiredCode):
		return http.StatusBadRequest, "Verification code has expired"
	case errors.As(err, &notConfirmed):
		return http.StatusForbidden, "Email not verified yet"
	case errors.As(err, &limitExceeded), errors.As(err, &tooManyRequests):
		return http.StatusTooManyRequests, "Too many attempts, please try again later"
	default:
		return http.StatusInternalServerError, "Authentication service error"
	}
}
