package facade

import "net/http"

// Routes builds the mux every public operation in spec.md §6.1 is served
// from, one HandleFunc per operation, GET for reads and POST for
// mutations, matching routes.go's ServeRoutesHandler registration style.
// Every handler is wrapped by f.wrap so a panic inside a
// handler is converted to an Unknown error rather than killing the
// listener goroutine.
func (f *Facade) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /list_installed_packages", f.wrap(f.handleListInstalledPackages))
	mux.HandleFunc("GET /list_outdated_packages", f.wrap(f.handleListOutdatedPackages))
	mux.HandleFunc("GET /list_tasks", f.wrap(f.handleListTasks))
	mux.HandleFunc("GET /list_manager_status", f.wrap(f.handleListManagerStatus))
	mux.HandleFunc("GET /list_pins", f.wrap(f.handleListPins))
	mux.HandleFunc("GET /list_package_keg_policies", f.wrap(f.handleListPackageKegPolicies))
	mux.HandleFunc("GET /search_local", f.wrap(f.handleSearchLocal))
	mux.HandleFunc("GET /get_safe_mode", f.wrap(f.handleGetSafeMode))
	mux.HandleFunc("GET /get_homebrew_keg_auto_cleanup", f.wrap(f.handleGetHomebrewKegAutoCleanup))
	mux.HandleFunc("GET /take_last_error_key", f.wrap(f.handleTakeLastErrorKey))

	mux.HandleFunc("POST /init", f.wrap(f.handleInit))
	mux.HandleFunc("POST /trigger_refresh", f.wrap(f.handleTriggerRefresh))
	mux.HandleFunc("POST /trigger_remote_search", f.wrap(f.handleTriggerRemoteSearch))
	mux.HandleFunc("POST /cancel_task", f.wrap(f.handleCancelTask))
	mux.HandleFunc("POST /upgrade_all", f.wrap(f.handleUpgradeAll))
	mux.HandleFunc("POST /upgrade_package", f.wrap(f.handleUpgradePackage))
	mux.HandleFunc("POST /pin_package", f.wrap(f.handlePinPackage))
	mux.HandleFunc("POST /unpin_package", f.wrap(f.handleUnpinPackage))
	mux.HandleFunc("POST /set_manager_enabled", f.wrap(f.handleSetManagerEnabled))
	mux.HandleFunc("POST /install_manager", f.wrap(f.handleInstallManager))
	mux.HandleFunc("POST /update_manager", f.wrap(f.handleUpdateManager))
	mux.HandleFunc("POST /uninstall_manager", f.wrap(f.handleUninstallManager))
	mux.HandleFunc("POST /set_safe_mode", f.wrap(f.handleSetSafeMode))
	mux.HandleFunc("POST /set_homebrew_keg_auto_cleanup", f.wrap(f.handleSetHomebrewKegAutoCleanup))
	mux.HandleFunc("POST /set_package_keg_policy", f.wrap(f.handleSetPackageKegPolicy))
	mux.HandleFunc("POST /reset_database", f.wrap(f.handleResetDatabase))

	return mux
}
