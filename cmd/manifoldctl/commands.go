package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(sockFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "show every manager's enabled/installed/health status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var out any
			if err := c.get(cmd.Context(), "/list_manager_status", nil, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
}

func newRefreshCmd(sockFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "trigger a refresh sweep across every enabled manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var out bool
			if err := c.post(cmd.Context(), "/trigger_refresh", nil, &out); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func newUpgradeCmd(sockFile *string) *cobra.Command {
	var managerID, name string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "upgrade one package on one manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var id int64
			body := map[string]string{"manager_id": managerID, "name": name}
			if err := c.post(cmd.Context(), "/upgrade_package", body, &id); err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&managerID, "manager", "", "manager id (required)")
	cmd.Flags().StringVar(&name, "name", "", "package name (required)")
	cmd.MarkFlagRequired("manager")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newUpgradeAllCmd(sockFile *string) *cobra.Command {
	var includePinned, allowOSUpdates bool
	cmd := &cobra.Command{
		Use:   "upgrade-all",
		Short: "upgrade every outdated, unpinned, unguarded package",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var ok bool
			body := map[string]bool{"include_pinned": includePinned, "allow_os_updates": allowOSUpdates}
			if err := c.post(cmd.Context(), "/upgrade_all", body, &ok); err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&includePinned, "include-pinned", false, "also upgrade pinned packages")
	cmd.Flags().BoolVar(&allowOSUpdates, "allow-os-updates", false, "also upgrade guarded (OS-level) managers")
	return cmd
}

func newPinCmd(sockFile *string) *cobra.Command {
	var managerID, name, version string
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "pin a package to its current or a specific version",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var ok bool
			body := map[string]string{"manager_id": managerID, "name": name, "pinned_version": version}
			if err := c.post(cmd.Context(), "/pin_package", body, &ok); err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
	cmd.Flags().StringVar(&managerID, "manager", "", "manager id (required)")
	cmd.Flags().StringVar(&name, "name", "", "package name (required)")
	cmd.Flags().StringVar(&version, "version", "", "pin to this specific version (empty pins to the current version)")
	cmd.MarkFlagRequired("manager")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newUnpinCmd(sockFile *string) *cobra.Command {
	var managerID, name string
	cmd := &cobra.Command{
		Use:   "unpin",
		Short: "remove a package's pin",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			var ok bool
			body := map[string]string{"manager_id": managerID, "name": name}
			if err := c.post(cmd.Context(), "/unpin_package", body, &ok); err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
	cmd.Flags().StringVar(&managerID, "manager", "", "manager id (required)")
	cmd.Flags().StringVar(&name, "name", "", "package name (required)")
	cmd.MarkFlagRequired("manager")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newSearchCmd(sockFile *string) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "search cached local results, or trigger a remote search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			query := args[0]
			if remote {
				var id int64
				if err := c.post(cmd.Context(), "/trigger_remote_search", map[string]string{"query": query}, &id); err != nil {
					return err
				}
				fmt.Println(id)
				return nil
			}
			var out any
			if err := c.get(cmd.Context(), "/search_local", map[string]string{"query": query}, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "submit a remote search task instead of reading the local cache")
	return cmd
}

func newCancelCmd(sockFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "cancel a queued or running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid task id %q: %w", args[0], err)
			}
			c := newClient(*sockFile)
			var ok bool
			if err := c.post(cmd.Context(), "/cancel_task", map[string]int64{"id": id}, &ok); err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
}

func newSafeModeCmd(sockFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safe-mode [on|off]",
		Short: "show or change the safe_mode flag guarding OS-level managers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(*sockFile)
			if len(args) == 0 {
				var out map[string]bool
				if err := c.get(cmd.Context(), "/get_safe_mode", nil, &out); err != nil {
					return err
				}
				printJSON(out)
				return nil
			}
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			var ok bool
			if err := c.post(cmd.Context(), "/set_safe_mode", map[string]bool{"safe_mode": on}, &ok); err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
	return cmd
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected \"on\" or \"off\", got %q", s)
	}
}
