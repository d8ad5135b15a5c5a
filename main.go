package main

import (
	"os"

	"tripmeld-server/routes"
	"tripmeld-server/services"
	"tripmeld-server/storage"
	"tripmeld-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()
	routes.SetItineraryGenerator(services.NewOpenAIGenerator())
	routes.SetNotificationService(services.NewNotificationService())

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok", "message": "TripMeld API is running"})
	})

	api := app.Party("/api")

	auth := api.Party("/auth")
	{
		auth.Post("/session", routes.CreateSession)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}
	api.Get("/me", accessTokenVerifierMiddleware, routes.GetCurrentUser)

	user := api.Party("/users")
	{
		user.Get("/", routes.GetUsers)
		user.Post("/", routes.CreateUser)
		user.Get("/{id:uint}", routes.GetUser)
		user.Put("/{id:uint}", routes.UpdateUser)
		user.Delete("/{id:uint}", routes.DeleteUser)
		user.Get("/{id:uint}/preferences", routes.GetUserPreferences)
		user.Put("/{id:uint}/preferences", routes.UpdateUserPreferences)
		user.Patch("/{id:uint}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
	}

	group := api.Party("/groups")
	{
		group.Get("/", routes.GetGroups)
		group.Post("/", routes.CreateGroup)
		group.Get("/{id:uint}", routes.GetGroup)
		group.Put("/{id:uint}", routes.UpdateGroup)
		group.Delete("/{id:uint}", routes.DeleteGroup)
		group.Get("/{id:uint}/members", routes.GetGroupMembers)
		group.Post("/{id:uint}/members", routes.AddGroupMember)
		group.Delete("/{id:uint}/members/{userID:uint}", routes.RemoveGroupMember)
	}

	itinerary := api.Party("/itineraries")
	{
		itinerary.Get("/", routes.GetItineraries)
		itinerary.Post("/", routes.CreateItinerary)
		itinerary.Post("/generate", routes.GenerateItinerary)
		itinerary.Get("/{id:uint}", routes.GetItinerary)
		itinerary.Put("/{id:uint}", routes.UpdateItinerary)
		itinerary.Delete("/{id:uint}", routes.DeleteItinerary)
		itinerary.Post("/{id:uint}/votes", routes.VoteOnItinerary)
		itinerary.Post("/{id:uint}/comments", routes.CommentOnItinerary)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	app.Listen(":" + port)
}
