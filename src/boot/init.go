package boot

import (
	"context"
	"ems/src/config"
	"ems/src/db"
	"ems/src/lib"
	"ems/src/models"
	"ems/src/payout"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.VendorAccount{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payout{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the periodic sweep that reports payouts stuck in
// processing. Settlement correctness never depends on this job.
func InitScheduler(engine *payout.Engine) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jid, err := lib.CreateCronJob(func() {
		engine.ReportStaleProcessing(context.Background())
	}, config.PAYOUT_STALE_AFTER)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *jid)
	sched.Start()
}
