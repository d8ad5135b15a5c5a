package routes

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"tripmeld-server/models"
	"tripmeld-server/storage"
	"tripmeld-server/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

type SessionInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

// CreateSession exchanges an identity-provider ID token for an application
// token pair. The ID token is verified against the provider's JWKS; the
// provider owns the whole credential flow, this server never sees a password.
func CreateSession(ctx iris.Context) {
	var input SessionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	jwksURL := os.Getenv("IDP_JWKS_URL")
	if jwksURL == "" {
		utils.CreateInternalServerError(ctx)
		return
	}

	res, httpErr := http.Get(jwksURL)
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// JWKS.Keyfunc selects the key with the matching kid and returns its
	// public key as the correct Go type.
	token, tokenErr := jwt.Parse(input.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil || !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "unauthorized", "Invalid identity token.", ctx)
		return
	}

	claims := token.Claims.(jwt.MapClaims)
	email := fmt.Sprint(claims["email"])
	if email == "" || email == "<nil>" {
		utils.CreateError(iris.StatusUnauthorized, "unauthorized", "Identity token has no email claim.", ctx)
		return
	}

	name := fmt.Sprint(claims["name"])
	if name == "<nil>" {
		name = fmt.Sprintf("%v %v", claims["given_name"], claims["family_name"])
	}

	var user models.User
	if err := storage.DB.Where("email = ?", email).First(&user).Error; err != nil {
		user = models.User{Name: name, Email: email}
		if err := storage.DB.Create(&user).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	returnUser(user, ctx)
}

// GetCurrentUser returns the user behind the verified access token.
func GetCurrentUser(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.Preload("Preference").First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&user)
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenPairErr := utils.CreateTokenPair(user.ID)
	if tokenPairErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"user":         &user,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
