package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/tracker"

	"github.com/spf13/cobra"
)

var (
	flagSignInProvider string
	flagSignInID       string
	flagSignInName     string
)

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Attach an Apple or Google identity to the profile",
	Long:  "Record an identity already verified by the platform. Practice data is kept; only the identity fields change.",
	Args:  cobra.NoArgs,
	RunE:  runSignIn,
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Return to a guest profile, keeping counts and streaks",
	Args:  cobra.NoArgs,
	RunE:  runSignOut,
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Continue as a guest without clearing the stored identity",
	Args:  cobra.NoArgs,
	RunE:  runGuest,
}

func init() {
	signInCmd.Flags().StringVar(&flagSignInProvider, "provider", "", "Identity provider: apple or google")
	signInCmd.Flags().StringVar(&flagSignInID, "id", "", "Apple user id or Google email")
	signInCmd.Flags().StringVar(&flagSignInName, "name", "", "Display name")
	_ = signInCmd.MarkFlagRequired("provider")
	_ = signInCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(signInCmd)
	rootCmd.AddCommand(signOutCmd)
	rootCmd.AddCommand(guestCmd)
}

func runSignIn(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			return tr.SignIn(flagSignInProvider, flagSignInID, flagSignInName)
		},
		func(ctx context.Context, c *daemon.Client) error {
			_, err := c.SignIn(ctx, daemon.SignInRequest{
				Provider:   flagSignInProvider,
				Identifier: flagSignInID,
				Name:       flagSignInName,
			})
			return err
		},
	)
	if errors.Is(err, tracker.ErrInvalidProvider) {
		return fmt.Errorf("unknown provider %q (use apple or google)", flagSignInProvider)
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Signed in with %s as %s\n", flagSignInProvider, flagSignInID)
	return nil
}

func runSignOut(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			tr.SignOut()
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			_, err := c.SignOut(ctx)
			return err
		},
	)
	if err != nil {
		return err
	}

	fmt.Println("  Signed out. Counts, streaks and preferences were kept.")
	return nil
}

func runGuest(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	err = withWriter(cfg,
		func(tr *tracker.Tracker) error {
			tr.ContinueAsGuest()
			return nil
		},
		func(ctx context.Context, c *daemon.Client) error {
			_, err := c.ContinueAsGuest(ctx)
			return err
		},
	)
	if err != nil {
		return err
	}

	fmt.Println("  Continuing as guest.")
	return nil
}
