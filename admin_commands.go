package main

import (
	"fmt"
	"time"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/seed"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()
			// Open 里已经做了迁移
			conn, err := db.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(conn)
			logger.Info("migration complete")
			return nil
		},
	}
}

func seedCommand() *cobra.Command {
	var admin string
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load components and teams from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			e := workflow.New(db.NewRepo(conn), workflow.WithLogger(logger))
			res, err := seed.Apply(cmd.Context(), e, workflow.Identity{SubjectID: admin, Role: workflow.RoleAdmin}, f)
			if err != nil {
				return err
			}
			logger.Info("seed complete",
				"components", res.Components, "teams", res.Teams, "skipped", res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&admin, "as", "seed", "subject recorded in the audit log")
	return cmd
}

// session issue：给讲师/管理员签发会话（没有密码登录）
func sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage API sessions",
	}

	var (
		role, subject string
		ttl           time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token; students take their team from the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			commonRun()
			if ttl > 0 {
				cfg.SessionTTL = ttl
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			id := workflow.Identity{SubjectID: subject, Role: workflow.Role(role)}
			if id.Role == workflow.RoleStudent {
				// 学生走同样的校验（存在、未禁用）
				if id, err = a.Engine.ResolveStudent(cmd.Context(), subject); err != nil {
					return err
				}
			}
			token, sess, err := a.Sessions().Create(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token:   %s\nexpires: %s\n",
				token, time.Unix(sess.ExpiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}
	issue.Flags().StringVar(&role, "role", string(workflow.RoleInstructor), "instructor | admin | student")
	issue.Flags().StringVar(&subject, "subject", "", "instructor name, admin name or student roll number")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "session lifetime (default SESSION_TTL)")
	_ = issue.MarkFlagRequired("subject")

	revoke := &cobra.Command{
		Use:   "revoke <subject>",
		Short: "Revoke every session of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Sessions().RevokeAllForSubject(cmd.Context(), args[0]); err != nil {
				return err
			}
			logger.Info("sessions revoked", "sub", args[0])
			return nil
		},
	}

	cmd.AddCommand(issue, revoke)
	return cmd
}
