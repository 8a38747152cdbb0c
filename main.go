package main

import (
	"context"
	"fmt"

	"skyvault/drive-api/api"
	"skyvault/drive-api/config"
	"skyvault/drive-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	if *config.SweepOrphans {
		zap.L().Info("Running startup orphan sweep")
		service.SweepOnce(context.Background(), a.DB, a.GW.Objects)
	}

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
