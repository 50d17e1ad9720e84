package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sam33128/Gita-pyqvault/pkg/api"
	"github.com/Sam33128/Gita-pyqvault/pkg/audit"
	"github.com/Sam33128/Gita-pyqvault/pkg/auth"
	"github.com/Sam33128/Gita-pyqvault/pkg/catalog"
	"github.com/Sam33128/Gita-pyqvault/pkg/files"
	"github.com/Sam33128/Gita-pyqvault/pkg/web"
)

func main() {
	config := LoadConfig()

	store, err := catalog.NewStore(config.Storage.DataFile)
	if err != nil {
		log.Fatal("Failed to open catalog:", err)
	}

	repo, err := files.NewRepository(config.Storage.UploadsPath, config.Uploads.AllowedExtensions)
	if err != nil {
		log.Fatal("Failed to open file repository:", err)
	}

	gate := auth.NewGate(config.Admin.Password, time.Duration(config.Admin.SessionTTLMins)*time.Minute)
	go func() {
		for range time.Tick(time.Hour) {
			if removed := gate.CleanupExpired(); removed > 0 {
				log.Printf("Dropped %d expired admin session(s)", removed)
			}
		}
	}()

	checker := audit.NewChecker(store, repo)

	if config.Audit.Enabled {
		scheduler := audit.NewScheduler(checker, config.Audit.Schedule)
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start audit scheduler:", err)
		}
		defer scheduler.Stop()
	}

	watcher, err := catalog.NewWatcher(store)
	if err != nil {
		log.Printf("Catalog watcher disabled: %v", err)
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = config.Uploads.MaxSizeMB << 20

	templates, err := web.LoadTemplates(config.Web.TemplatePath)
	if err != nil {
		log.Fatal("Failed to load templates:", err)
	}
	router.SetHTMLTemplate(templates)

	api.New(store, repo, gate, checker, config.Uploads.MaxSizeMB<<20).RegisterRoutes(router)
	web.NewHandlers(store, gate).RegisterRoutes(router)

	addr := config.Server.Host + ":" + config.Server.Port
	log.Printf("Starting server on %s (%d papers in catalog)", addr, store.Len())
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
