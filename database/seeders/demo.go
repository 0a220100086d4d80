package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"
	"vizhaa-backend/models/common"
	userModel "vizhaa-backend/models/user"
	eventService "vizhaa-backend/services/event"
	userService "vizhaa-backend/services/user"
	eventTypes "vizhaa-backend/types/event"

	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "vizhaa123"

var demoUsers = []userModel.User{
	{
		FullName:    "Demo Organizer",
		Email:       "organizer@vizhaa.test",
		Phone:       "9000000001",
		UserType:    constants.UserTypeOrganizer,
		CompanyName: "Vizhaa Events",
	},
	{
		FullName: "Demo Caterer",
		Email:    "caterer@vizhaa.test",
		Phone:    "9000000002",
		UserType: constants.UserTypeSupplier,
		Services: common.StringSlice{constants.ServiceBreakfast, constants.ServiceLunch, constants.ServiceDinner},
	},
	{
		FullName: "Demo Bartender",
		Email:    "bar@vizhaa.test",
		Phone:    "9000000003",
		UserType: constants.UserTypeSupplier,
		Services: common.StringSlice{constants.ServiceCocktails, constants.ServiceSnacks},
	},
}

// SeedDemo creates demo accounts and a few open events. Accounts that already
// exist are left alone, so it can run on every start in development.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	log.Printf("🔍 Checking demo data...")

	users := userService.NewService(db, nil)
	var organizerID string
	created := 0
	for _, tmpl := range demoUsers {
		u := tmpl
		existing, err := users.FindByPhone(ctx, u.Phone)
		if err == nil {
			if u.UserType == constants.UserTypeOrganizer {
				organizerID = existing.ID
			}
			continue
		}
		if !errors.Is(err, apperr.ErrUserNotFound) {
			return err
		}

		u.Password = DemoPassword
		u.IsVerified = true
		u.IsActive = true
		u.IsApproved = u.UserType == constants.UserTypeSupplier
		if err := users.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
		if u.UserType == constants.UserTypeOrganizer {
			organizerID = u.ID
		}
		created++
	}

	if created == 0 {
		log.Printf("✅ Demo data already present")
		return nil
	}

	events := eventService.NewService(db)
	month := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	for _, req := range []eventTypes.CreateEventRequest{
		{
			EventName:         "Sharma Wedding Reception",
			EventType:         "Wedding",
			Location:          "Chennai Trade Centre",
			NumberOfSuppliers: 3,
			EventDate:         month,
			EventTime:         "18:30",
			ServicesNeeded:    []string{constants.ServiceDinner, constants.ServiceDesserts, constants.ServiceCocktails},
			Budget:            250000,
			Status:            "Planning",
		},
		{
			EventName:         "Annual Tech Offsite",
			EventType:         "Corporate",
			Location:          "Bengaluru Palace Grounds",
			NumberOfSuppliers: 2,
			EventDate:         month,
			EventTime:         "09:00",
			ServicesNeeded:    []string{constants.ServiceBreakfast, constants.ServiceLunch, constants.ServiceHighTea},
			Budget:            120000,
			Status:            "Planning",
		},
	} {
		if _, err := events.Create(ctx, organizerID, req); err != nil {
			return fmt.Errorf("seed event %q: %w", req.EventName, err)
		}
	}

	log.Printf("🌱 Seeded %d demo accounts (password %q)", created, DemoPassword)
	return nil
}
