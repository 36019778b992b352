package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mkehrer/monopoly-server/app/controllers"
	"github.com/mkehrer/monopoly-server/pkg/routes"
	"github.com/mkehrer/monopoly-server/platform/cache"
	"github.com/mkehrer/monopoly-server/platform/database"
	"github.com/mkehrer/monopoly-server/platform/logging"
	"github.com/mkehrer/monopoly-server/platform/registry"
	socket "github.com/mkehrer/monopoly-server/platform/sockets"
)

func main() {
	logging.Init()

	db := database.PostgreSQLConnection()
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	db.Close()

	reg := registry.New(cache.CreateRedisPool())

	app := fiber.New()
	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app, reg)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: controllers.JWTSecret(),
	}))
	app.Get("/user/cur", controllers.Cur)

	go socket.CreateSocketIOServer(reg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4101"
	}
	logrus.Fatal(app.Listen(":" + port))
}
