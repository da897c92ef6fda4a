package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"bookswap/api/middleware"
	"bookswap/api/routes"
	"bookswap/config"
	"bookswap/db"
	"bookswap/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	err = db.ConnectDB()
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	if err := db.CreateStatusEnums(db.ORM); err != nil {
		log.Println("Warning: failed to create status enums:", err)
	}
	if err := db.CreateLifecycleIndexes(db.ORM); err != nil {
		log.Println("Warning: failed to create indexes:", err)
	}

	// Redis и RabbitMQ опциональны: без них уведомления идут напрямую,
	// а статистика считается из БД
	if err := services.InitRedis(); err != nil {
		log.Println("Warning: Redis initialization failed:", err)
	} else {
		services.MatchQueueInstance.StartWorkers(context.Background())
	}

	if err := services.InitRabbitMQ(); err != nil {
		log.Println("Warning: RabbitMQ initialization failed:", err)
	} else {
		if err := services.StartLendingEventConsumer(context.Background(), "lending_notifications"); err != nil {
			log.Println("Warning: failed to start lending event consumer:", err)
		}
	}

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("bookswap"))

	routes.PublicApi(router)

	addr := ":8080"
	if config.AppConfig.Backend.Port != 0 {
		addr = fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
