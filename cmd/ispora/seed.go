package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

const demoEmail = "demo@ispora.app"

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo user with sample project, session, task and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := openDatabase(ctx, cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			userID, err := seedDemoData(ctx, db)
			if err != nil {
				return err
			}
			if userID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "demo data already present")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded demo user %s (%s)\n", userID, demoEmail)
			return nil
		},
	}
}

// seedDemoData inserts the demo records. It returns an empty id without error
// when the demo user already exists.
func seedDemoData(ctx context.Context, db *database.DB) (string, error) {
	existing, err := db.ListUsers(ctx, database.UserFilter{Email: ptr(demoEmail)})
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		log.Info().Str("user_id", existing[0].ID).Msg("Demo user already exists; skipping seed")
		return "", nil
	}

	userID, err := db.CreateUser(ctx, &database.User{
		Email: demoEmail,
		Name:  "Demo User",
		Role:  "mentor",
	})
	if errors.Is(err, database.ErrConflict) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to create demo user: %w", err)
	}

	projectID, err := db.CreateProject(ctx, &database.Project{
		Title:       "My First Project",
		Description: ptr("A sample project to explore iSpora."),
		CreatorID:   &userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create demo project: %w", err)
	}

	if _, err := db.CreateSession(ctx, &database.Session{
		ProjectID:   &projectID,
		Title:       "Kickoff call",
		Description: ptr("Meet your mentees and agree on goals."),
		ScheduledAt: time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour),
		MeetingLink: ptr("https://meet.ispora.app/kickoff"),
		IsPublic:    true,
		Agenda:      "Introductions; goals; schedule",
		CreatorID:   &userID,
	}); err != nil {
		return "", fmt.Errorf("failed to create demo session: %w", err)
	}

	if _, err := db.CreateTask(ctx, &database.Task{
		ProjectID:  &projectID,
		Title:      "Write project brief",
		AssigneeID: &userID,
	}); err != nil {
		return "", fmt.Errorf("failed to create demo task: %w", err)
	}

	for _, n := range []database.Notification{
		{UserID: userID, Title: "Welcome to iSpora!", Message: ptr("Your account has been created successfully."), Type: "info"},
		{UserID: userID, Title: "New Project Created", Message: ptr("You have created a new project: 'My First Project'"), Type: "success"},
	} {
		if _, err := db.CreateNotification(ctx, &n); err != nil {
			return "", fmt.Errorf("failed to create demo notification: %w", err)
		}
	}

	log.Info().Str("user_id", userID).Str("project_id", projectID).Msg("Demo data seeded")
	return userID, nil
}

func ptr[T any](v T) *T { return &v }
