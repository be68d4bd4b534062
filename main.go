package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/medbridge/backend/api"
	"github.com/medbridge/backend/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// @title MedBridge API
// @version 0.1
// @description Appointments, ambulance dispatch and payments for MedBridge.

// @BasePath /
// @schemes http https

// @securityDefinitions.apiKey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	_ = godotenv.Load("dev.env")

	app := cli.NewApp()
	app.Name = "MedBridge Backend"
	app.Version = "1.00"
	app.Compiled = time.Now()
	app.Commands = []cli.Command{
		{
			Name:  "backend-up",
			Usage: "This command starts the backend service",
			Action: func(c *cli.Context) error {
				StartServer(api.GetRoutes())
				return nil
			},
		},
		{
			Name:  "notifications-retry",
			Usage: "This command re-sends the stored failed notifications and exits",
			Flags: []cli.Flag{
				cli.DurationFlag{
					Name:  "timeout",
					Value: 5 * time.Minute,
					Usage: "time allowed to queue the stored notifications",
				},
			},
			Action: func(c *cli.Context) error {
				return RetryNotifications(c.Duration("timeout"))
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func StartServer(routes []*server.Route) {
	ctx := server.GetAppContext()
	ctx.CreateMySQLConnection()
	ctx.CreateSMTPConnection()
	ctx.CreateRazorpayIntegration()
	ctx.CreateRedisConnection()
	ctx.CreateNewSessionS3()
	ctx.CreateNotificationQueue()
	ctx.CreateServices()

	server.UpServer(routes, ctx)
}

// RetryNotifications queues every stored failure, waits for the workers to
// drain and reports what happened.
func RetryNotifications(timeout time.Duration) error {
	wrapper := server.GetAppContext()
	wrapper.CreateMySQLConnection()
	wrapper.CreateSMTPConnection()
	wrapper.CreateNotificationQueue()
	defer wrapper.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	queue := wrapper.Context.Notifications
	queue.Start(ctx)

	retried, err := queue.RetryFailed(ctx)
	queue.Stop()

	log.WithFields(log.Fields{
		"retried": retried,
		"stats":   queue.Stats(),
	}).Info("notifications retried")

	return err
}
