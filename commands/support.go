package commands

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"incidentflow/core"
	"incidentflow/utils"
)

// Validation checks the parameters of a backup, migration or configuration step
type Validation struct {
	ValidationType   string `validate:"required"`
	ResourceName     string
	ResourceLocation string
}

func requireNonEmpty(value, message string) string {
	return script(
		fmt.Sprintf("if [ -z %s ]; then", q(value)),
		fmt.Sprintf("  echo %s", q("❌ "+message)),
		"  exit 1",
		"fi",
	)
}

func (c Validation) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	switch c.ValidationType {
	case "backup_params":
		location := q(c.ResourceLocation)
		return script(
			`echo "🔍 VALIDATING BACKUP PARAMETERS"`,
			fmt.Sprintf("echo %s", q("Resource: "+c.ResourceName)),
			fmt.Sprintf("echo %s", q("Location: "+c.ResourceLocation)),
			fmt.Sprintf("if [ ! -d %s ]; then", location),
			fmt.Sprintf("  echo %s", q("📁 Creating backup directory: "+c.ResourceLocation)),
			fmt.Sprintf("  if mkdir -p %s; then", location),
			`    echo "✅ Backup directory created successfully"`,
			"  else",
			`    echo "❌ Failed to create backup directory"`,
			"    exit 1",
			"  fi",
			"else",
			`  echo "✅ Backup directory already exists"`,
			"fi",
			requireNonEmpty(c.ResourceName, "Database name is required"),
			`echo "✅ Backup parameters validated"`,
		), nil
	case "migration_params":
		return script(
			`echo "🔍 VALIDATING MIGRATION PARAMETERS"`,
			fmt.Sprintf("echo %s", q("Migration: "+c.ResourceName)),
			requireNonEmpty(c.ResourceName, "Migration name is required"),
			`echo "✅ Migration parameters validated"`,
		), nil
	case "config_params":
		return script(
			`echo "✅ VALIDATING CONFIGURATION PARAMETERS"`,
			fmt.Sprintf("echo %s", q("Resource: "+c.ResourceName)),
			requireNonEmpty(c.ResourceName, "Resource name is required"),
			`echo "✅ Parameters validated"`,
		), nil
	default:
		return script(
			fmt.Sprintf("echo %s", q("🔍 VALIDATING "+strings.ToUpper(c.ValidationType))),
			fmt.Sprintf("echo %s", q("Resource: "+c.ResourceName)),
			`echo "✅ Validation completed"`,
		), nil
	}
}

// ReportGeneration prints a sectioned plain-text report. Sections are emitted in key order.
type ReportGeneration struct {
	ReportType       string `validate:"required"`
	Title            string `validate:"required"`
	Sections         map[string]string
	IncludeTimestamp bool
}

func (c ReportGeneration) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(c.Title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(c.Title))) + "\n")

	names := make([]string, 0, len(c.Sections))
	for name := range c.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "=== %s ===\n%s\n\n", name, c.Sections[name])
	}

	parts := []string{fmt.Sprintf("echo %s", q(strings.ToUpper(c.ReportType)+" REPORT"))}
	if c.IncludeTimestamp {
		parts = append(parts, `echo "Generated: $(date)"`, `echo ""`)
	}
	parts = append(parts, fmt.Sprintf("echo '%s' | base64 -d", base64.StdEncoding.EncodeToString([]byte(sb.String()))))
	return script(parts...), nil
}

// ClusterConnection simulates a cluster-info check
type ClusterConnection struct {
	// ClusterType defaults to kubernetes
	ClusterType string
	// ConnectionTimeout is in seconds, default 30
	ConnectionTimeout int `validate:"gte=0"`
}

func (c ClusterConnection) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	clusterType := valueOr(c.ClusterType, "kubernetes")
	timeout := intOr(c.ConnectionTimeout, 30)

	if clusterType != "kubernetes" {
		return script(
			fmt.Sprintf("echo %s", q("🔍 CHECKING "+strings.ToUpper(clusterType)+" CONNECTION")),
			fmt.Sprintf("echo %s", q(fmt.Sprintf("Connection timeout: %ds", timeout))),
			`echo "✅ Connection check completed"`,
		), nil
	}
	return script(
		`echo "🔍 CHECKING CLUSTER CONNECTION (Demo Mode)"`,
		fmt.Sprintf("echo %s", q("Cluster type: "+clusterType)),
		fmt.Sprintf("echo %s", q(fmt.Sprintf("Connection timeout: %ds", timeout))),
		`echo "📝 Simulating kubectl cluster-info check..."`,
		"sleep 2",
		`echo "Kubernetes control plane is running at https://demo-cluster.example.com:6443"`,
		`echo "CoreDNS is running at https://demo-cluster.example.com:6443/api/v1/namespaces/kube-system/services/kube-dns:dns/proxy"`,
		`echo ""`,
		`echo "✅ Cluster connection successful (simulated)"`,
	), nil
}

// BackupVerification checks that the newest matching backup exists and is not trivially small
type BackupVerification struct {
	BackupLocation    string `validate:"required"`
	BackupNamePattern string `validate:"required"`
	// MinSizeBytes defaults to 1024
	MinSizeBytes int64 `validate:"gte=0"`
}

func (c BackupVerification) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	minSize := c.MinSizeBytes
	if minSize == 0 {
		minSize = 1024
	}

	return script(
		`echo "🔍 VERIFYING BACKUP INTEGRITY"`,
		fmt.Sprintf("LATEST_BACKUP=$(ls -t %s/%s 2>/dev/null | head -1)", q(c.BackupLocation), c.BackupNamePattern),
		`if [ -n "$LATEST_BACKUP" ]; then`,
		`  echo "✅ Backup file found: $LATEST_BACKUP"`,
		`  echo "📊 Backup size: $(du -h "$LATEST_BACKUP" | cut -f1)"`,
		`  BACKUP_SIZE=$(wc -c < "$LATEST_BACKUP")`,
		fmt.Sprintf(`  if [ "$BACKUP_SIZE" -gt %d ]; then`, minSize),
		`    echo "✅ Backup size verification passed"`,
		"  else",
		`    echo "⚠️ Backup file seems too small"`,
		"  fi",
		"else",
		`  echo "❌ No backup file found"`,
		"  exit 1",
		"fi",
	), nil
}

var setupEmoji = map[string]string{
	"data_generation": "🎲",
	"testing":         "⚡",
	"security_scan":   "🔒",
	"performance":     "📊",
}

// EnvironmentSetup prepares a work directory and reports missing tools
type EnvironmentSetup struct {
	SetupType     string `validate:"required"`
	WorkDirectory string `validate:"required"`
	RequiredTools []string
}

func (c EnvironmentSetup) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	emoji, ok := setupEmoji[c.SetupType]
	if !ok {
		emoji = "🔧"
	}

	parts := []string{
		fmt.Sprintf("echo %s", q(fmt.Sprintf("%s SETTING UP %s ENVIRONMENT", emoji, strings.ToUpper(strings.ReplaceAll(c.SetupType, "_", " "))))),
		fmt.Sprintf("mkdir -p %s", q(c.WorkDirectory)),
		fmt.Sprintf("echo %s", q("Work directory: "+c.WorkDirectory)),
	}
	if len(c.RequiredTools) > 0 {
		parts = append(parts, `echo "Checking required tools..."`)
		for _, tool := range c.RequiredTools {
			parts = append(parts, fmt.Sprintf("command -v %s >/dev/null 2>&1 || echo %s", utils.ShellQuote(tool), q("⚠️ "+tool+" not found")))
		}
	}
	parts = append(parts, `echo "✅ Environment setup completed"`)
	return script(parts...), nil
}

// SystemMetrics collects the requested metric groups: cpu, memory, disk, processes
type SystemMetrics struct {
	MetricTypes []string `validate:"required,min=1,dive,oneof=cpu memory disk processes network"`
	// TopProcesses defaults to 10
	TopProcesses int `validate:"gte=0"`
}

func (c SystemMetrics) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	wanted := make(map[string]bool, len(c.MetricTypes))
	for _, m := range c.MetricTypes {
		wanted[m] = true
	}
	top := intOr(c.TopProcesses, 10)

	parts := []string{`echo "📊 COLLECTING SYSTEM METRICS"`}
	if wanted["cpu"] {
		parts = append(parts, `echo "=== CPU Usage ==="`, `top -bn1 | grep "Cpu(s)" | head -1`, `echo ""`)
	}
	if wanted["memory"] {
		parts = append(parts, `echo "=== Memory Usage ==="`, "free -h", `echo ""`)
	}
	if wanted["disk"] {
		parts = append(parts, `echo "=== Disk Usage ==="`, `df -h | grep -E "^/dev" | head -5`, `echo ""`)
	}
	if wanted["processes"] {
		parts = append(parts, fmt.Sprintf(`echo "=== Top %d Processes ==="`, top), fmt.Sprintf("ps aux | head -%d", top+1), `echo ""`)
	}
	if wanted["network"] {
		parts = append(parts, `echo "=== Network Interfaces ==="`, "ip -brief addr 2>/dev/null || ifconfig -a", `echo ""`)
	}
	parts = append(parts, `echo "✅ Metrics collection completed"`)
	return script(parts...), nil
}
