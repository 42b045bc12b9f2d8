package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"TakeawayPos/app/backend"
	"TakeawayPos/app/config"
	"TakeawayPos/app/database"
	"TakeawayPos/app/services"
	"TakeawayPos/app/websocket"

	"github.com/joho/godotenv"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

// App struct
type App struct {
	ctx             context.Context
	LoggerService   *services.LoggerService
	SessionService  *services.SessionService
	MenuService     *services.MenuService
	SettingsService *services.SettingsService
	PrinterService  *services.PrinterService
	KOTService      *services.KOTService
	BillingService  *services.BillingService
	TakeawayService *services.TakeawayService
	WSServer        *websocket.Server
	isFirstRun      bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowMaximise(a.ctx)
}

// beforeClose is called when the application is about to quit
func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	a.LoggerService.LogInfo("Application closing")

	if a.WSServer != nil {
		a.LoggerService.LogInfo("Stopping kitchen display server")
		a.WSServer.Stop()
	}

	if db := database.GetLocalDB(); db != nil {
		if err := db.Close(); err != nil {
			a.LoggerService.LogError("Error closing local database", err)
		}
	}

	a.LoggerService.LogInfo("Application shutdown complete")
	return false
}

func main() {
	// Initialize logger FIRST to catch all errors
	loggerService := services.NewLoggerService()
	if loggerService == nil {
		fmt.Println("CRITICAL: Logger service failed to initialize")
		os.Exit(1)
	}
	defer loggerService.Close()

	defer func() {
		if r := recover(); r != nil {
			loggerService.LogPanic(r)
			os.Exit(1)
		}
	}()

	loggerService.LogInfo("Application starting", "Takeaway POS")

	// Load environment variables from .env file (for development)
	if err := godotenv.Load(".env"); err != nil {
		loggerService.LogWarning(".env file not found, will use config.json if available")
	}

	app := NewApp()
	app.LoggerService = loggerService

	// Load or create the configuration
	exists, err := config.ConfigExists()
	if err != nil {
		loggerService.LogError("Could not check config", err)
	}

	var cfg *config.AppConfig
	if exists {
		cfg, err = config.LoadConfig()
		if err != nil {
			loggerService.LogError("Error loading config, recreating defaults", err)
		}
	}
	if cfg == nil {
		cfg, err = config.CreateDefaultConfig()
		if err != nil {
			loggerService.LogError("Could not create default config", err)
			os.Exit(1)
		}
		loggerService.LogInfo("First run detected, default config created")
	}
	app.isFirstRun = cfg.FirstRun

	// Initialize the local database
	dataPath := cfg.System.DataPath
	if dataPath == "" {
		configPath, err := config.GetConfigPath()
		if err == nil {
			dataPath = filepath.Join(filepath.Dir(configPath), "data")
		} else {
			dataPath = "./data"
		}
	}
	if err := database.InitializeLocalDB(filepath.Join(dataPath, "local.db")); err != nil {
		loggerService.LogError("Failed to initialize local database", err)
		os.Exit(1)
	}
	localDB := database.GetLocalDB()

	// Backend REST client
	client := backend.NewClient(&cfg.Backend)
	loggerService.LogInfo("Backend client initialized", cfg.Backend.BaseURL)

	// Kitchen display feed
	wsPort := os.Getenv("WS_PORT")
	if wsPort == "" {
		wsPort = "8090"
	}
	app.WSServer = websocket.NewServer(":" + wsPort)
	go func() {
		defer loggerService.RecoverPanic()
		if err := app.WSServer.Start(); err != nil {
			loggerService.LogError("Kitchen display server error", err)
		}
	}()

	// Wire the services
	loggerService.LogInfo("Initializing services")
	app.MenuService = services.NewMenuService(client, localDB, loggerService)
	app.SettingsService = services.NewSettingsService(client, localDB, cfg, loggerService)
	app.PrinterService = services.NewPrinterService(loggerService, cfg.System.PrinterName)

	app.SessionService, err = services.NewSessionService(localDB, loggerService, cfg.Business.TaxRatePercent)
	if err != nil {
		loggerService.LogError("Failed to initialize session service", err)
		os.Exit(1)
	}

	app.KOTService = services.NewKOTService(client, localDB, app.PrinterService,
		app.SessionService, app.WSServer, loggerService, cfg)
	app.BillingService = services.NewBillingService(client, app.PrinterService,
		app.SessionService, app.SettingsService, app.KOTService, loggerService)
	app.TakeawayService = services.NewTakeawayService(app.SessionService, app.MenuService,
		app.SettingsService, app.KOTService, app.BillingService, loggerService)

	// Housekeeping
	go func() {
		defer loggerService.RecoverPanic()
		loggerService.CleanOldLogs(30)
	}()

	bindList := []interface{}{
		app,
		app.LoggerService,
		app.SessionService,
		app.MenuService,
		app.SettingsService,
		app.PrinterService,
		app.KOTService,
		app.BillingService,
		app.TakeawayService,
	}

	err = wails.Run(&options.App{
		Title:  "Takeaway POS",
		Width:  1400,
		Height: 900,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnBeforeClose:    app.beforeClose,
		Bind:             bindList,
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
		Menu: nil,
	})

	if err != nil {
		loggerService.LogError("Wails application error", err)
		println("Error:", err.Error())
	}
}
