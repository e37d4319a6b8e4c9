// Package model holds the data model shared by every layer of the engine:
// the persisted records (detections, packages, tasks, pins, settings) and
// the small enums that classify managers and capabilities. Nothing in this
// package touches I/O; it exists so the store, adapters, queue and façade
// all agree on one shape.
package model

import "time"

// Category classifies what kind of thing a manager manages.
type Category string

const (
	CategoryToolchain Category = "toolchain"
	CategorySystem    Category = "system"
	CategoryLanguage  Category = "language"
	CategoryApp       Category = "app"
	CategoryContainer Category = "container"
	CategorySecurity  Category = "security"
	CategoryFirmware  Category = "firmware"
)

// Authority orders managers during refresh: authoritative managers are
// observed first because their state can change what other managers report.
type Authority int

const (
	AuthorityAuthoritative Authority = iota
	AuthorityStandard
	AuthorityGuarded
)

func (a Authority) String() string {
	switch a {
	case AuthorityAuthoritative:
		return "authoritative"
	case AuthorityStandard:
		return "standard"
	case AuthorityGuarded:
		return "guarded"
	default:
		return "unknown"
	}
}

// Tiers is the fixed refresh order: authoritative, then standard, then guarded.
var Tiers = []Authority{AuthorityAuthoritative, AuthorityStandard, AuthorityGuarded}

// Capability is a declared operation an adapter supports.
type Capability string

const (
	CapDetect        Capability = "Detect"
	CapListInstalled Capability = "ListInstalled"
	CapListOutdated  Capability = "ListOutdated"
	CapSearch        Capability = "Search"
	CapInstall       Capability = "Install"
	CapUninstall     Capability = "Uninstall"
	CapUpgrade       Capability = "Upgrade"
	CapPin           Capability = "Pin"
	CapUnpin         Capability = "Unpin"
	CapSelfUpdate    Capability = "SelfUpdate"
)

// CapabilitySet is a declared, order-independent set of capabilities.
type CapabilitySet map[Capability]bool

// NewCapabilitySet builds a set from a literal list.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// Has reports whether the capability is declared.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// ManagerMeta describes a registered manager. Returned by Adapter.Describe.
type ManagerMeta struct {
	ID           string
	DisplayName  string
	Category     Category
	Authority    Authority
	Capabilities CapabilitySet
}

// DetectionRecord captures whether a manager's tool is present on the host.
type DetectionRecord struct {
	ManagerID  string
	Installed  bool
	Version    string // empty string normalized to "absent"
	Path       string
	DetectedAt time.Time
}

// HasVersion reports whether a version string was observed.
func (d DetectionRecord) HasVersion() bool { return d.Version != "" }

// PackageRecord is a cached installed/outdated package observation.
type PackageRecord struct {
	ManagerID        string
	Name             string
	InstalledVersion string
	LatestVersion    string
	Pinned           bool // overlay from the pins table, not persisted on the row itself
	SourceQuery      string
	CachedAt         time.Time
	RestartRequired  bool // only meaningful for system managers
}

// HasUpdate implements the invariant: installed != latest, latest known.
func (p PackageRecord) HasUpdate() bool {
	return p.InstalledVersion != p.LatestVersion && p.LatestVersion != ""
}

// SearchResult is a single hit from a Search capability call.
type SearchResult struct {
	ManagerID     string
	Name          string
	Description   string
	LatestVersion string
	Query         string
	FetchedAt     time.Time
	ExpiresAt     time.Time
}

// TaskKind enumerates the mutating and refresh operations a task can perform.
type TaskKind string

const (
	TaskRefresh      TaskKind = "Refresh"
	TaskInstall      TaskKind = "Install"
	TaskUninstall    TaskKind = "Uninstall"
	TaskUpgrade      TaskKind = "Upgrade"
	TaskPin          TaskKind = "Pin"
	TaskUnpin        TaskKind = "Unpin"
	TaskSelfUpdate   TaskKind = "SelfUpdate"
	TaskRemoteSearch TaskKind = "RemoteSearch"
)

// TaskState is a task's position in its state machine. Transitions are
// monotonic: Queued -> Running -> terminal, or Queued -> Canceled.
type TaskState string

const (
	TaskQueued    TaskState = "Queued"
	TaskRunning   TaskState = "Running"
	TaskCompleted TaskState = "Completed"
	TaskFailed    TaskState = "Failed"
	TaskCanceled  TaskState = "Canceled"
)

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCanceled
}

// Task is a single unit of work associated with one manager.
type Task struct {
	ID        int64
	ManagerID string
	Kind      TaskKind
	Target    string // package name, or "" for manager-wide tasks (Refresh, SelfUpdate)
	LabelKey  string
	LabelArgs map[string]string
	State     TaskState
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
	ErrorKey  string
	ErrorArgs map[string]string
}

// DedupKey identifies tasks that submit to the same (manager, kind, target)
// triple for in-flight deduplication.
func (t Task) DedupKey() string {
	return t.ManagerID + "|" + string(t.Kind) + "|" + t.Target
}

// Pin excludes a package from bulk upgrades. Native when the underlying tool
// supports it, virtual when tracked only in the engine's store.
type Pin struct {
	ManagerID     string
	Name          string
	PinnedVersion string // empty means "pin to whatever is currently installed"
}

// Recognized AppSettings keys (spec.md §6.3).
const (
	SettingSafeMode               = "safe_mode"
	SettingHomebrewKegAutoCleanup = "homebrew_keg_auto_cleanup"
	SettingOnboardingCompleted    = "onboarding_completed"
	SettingLocaleOverride         = "locale_override"
)

// AllManagersID is the synthetic manager id a RemoteSearch task carries
// when trigger_remote_search(query) fans out to every manager declaring
// CapSearch, rather than one specific manager (spec.md's
// trigger_remote_search signature takes only a query, no manager_id).
const AllManagersID = "*"

// ManagerEnabledKey returns the app_settings key gating refresh/submission
// for a given manager id.
func ManagerEnabledKey(managerID string) string {
	return "manager_enabled[" + managerID + "]"
}

// KegPolicy is a per-package keg-cleanup override for Homebrew-style managers.
type KegPolicy int

const (
	KegPolicyClear KegPolicy = -1
	KegPolicyKeep  KegPolicy = 0
	KegPolicyClean KegPolicy = 1
)

// HealthStatus is the derived, read-side-only aggregate status of a manager.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthAttention HealthStatus = "attention"
	HealthError     HealthStatus = "error"
	HealthRunning   HealthStatus = "running"
)

// ManagerStatus is what list_manager_status() returns per manager.
type ManagerStatus struct {
	ManagerID string
	Enabled   bool
	Detected  DetectionRecord
	Health    HealthStatus
}
