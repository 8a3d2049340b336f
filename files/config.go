package files

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"incidentflow/core"
)

// ConfigurationFile generates an nginx site, a kubernetes deployment + service, or an ini file
type ConfigurationFile struct {
	ConfigType   string `validate:"required"`
	Environment  string `validate:"required"`
	TemplateVars map[string]string
	// OutputFormat is only reported in the banner; the content format follows ConfigType
	OutputFormat string
}

func (c ConfigurationFile) v(key, fallback string) string {
	return valueOr(c.TemplateVars[key], fallback)
}

func (c ConfigurationFile) Files() ([]File, error) {
	if err := core.ValidateModel(c); err != nil {
		return nil, err
	}

	switch c.ConfigType {
	case "nginx":
		return []File{{
			Destination: fmt.Sprintf("nginx_%s.conf", c.Environment),
			Content:     c.nginx(),
		}}, nil
	case "kubernetes":
		content, err := c.kubernetes()
		if err != nil {
			return nil, err
		}
		return []File{{
			Destination: fmt.Sprintf("kubernetes_%s.yaml", c.Environment),
			Content:     content,
		}}, nil
	default:
		return []File{{
			Destination: fmt.Sprintf("%s_%s.conf", c.ConfigType, c.Environment),
			Content:     c.ini(),
		}}, nil
	}
}

func (c ConfigurationFile) Command() (string, error) {
	fs, err := c.Files()
	if err != nil {
		return "", err
	}
	return WriteCommand(fs[0], Preview{
		Heading: fmt.Sprintf("⚙️ GENERATING %s CONFIGURATION", strings.ToUpper(c.ConfigType)),
		Details: []string{
			"Environment: " + c.Environment,
			"Format: " + valueOr(c.OutputFormat, "yaml"),
		},
		Action:  "📝 Creating configuration file...",
		Subject: "Configuration",
	}), nil
}

func (c ConfigurationFile) nginx() string {
	return fmt.Sprintf(`# Nginx Configuration for %s
server {
    listen 80;
    server_name %s;

    location / {
        proxy_pass %s;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
    }

    # Security headers
    add_header X-Frame-Options SAMEORIGIN;
    add_header X-Content-Type-Options nosniff;
}
`, c.Environment, c.v("server_name", "localhost"), c.v("upstream_url", "http://localhost:3000"))
}

func (c ConfigurationFile) ini() string {
	debug := "false"
	if c.Environment == "development" {
		debug = "true"
	}
	return fmt.Sprintf(`# Configuration for %s
# Environment: %s
# Generated automatically - do not edit manually

[general]
environment = %s
debug = %s

[database]
host = %s
port = %s
name = %s

[cache]
redis_url = %s
ttl = %s
`, c.ConfigType, c.Environment, c.Environment, debug,
		c.v("db_host", "localhost"), c.v("db_port", "5432"), c.v("db_name", "myapp"),
		c.v("redis_url", "redis://localhost:6379"), c.v("cache_ttl", "3600"))
}

// k8s manifest shapes, limited to what the generated deployment uses

type k8sMeta struct {
	Name      string            `yaml:"name,omitempty"`
	Namespace string            `yaml:"namespace,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty"`
}

type k8sEnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type k8sPort struct {
	ContainerPort any `yaml:"containerPort"`
}

type k8sContainer struct {
	Name  string      `yaml:"name"`
	Image string      `yaml:"image"`
	Ports []k8sPort   `yaml:"ports"`
	Env   []k8sEnvVar `yaml:"env"`
}

type k8sDeployment struct {
	APIVersion string  `yaml:"apiVersion"`
	Kind       string  `yaml:"kind"`
	Metadata   k8sMeta `yaml:"metadata"`
	Spec       struct {
		Replicas any `yaml:"replicas"`
		Selector struct {
			MatchLabels map[string]string `yaml:"matchLabels"`
		} `yaml:"selector"`
		Template struct {
			Metadata k8sMeta `yaml:"metadata"`
			Spec     struct {
				Containers []k8sContainer `yaml:"containers"`
			} `yaml:"spec"`
		} `yaml:"template"`
	} `yaml:"spec"`
}

type k8sServicePort struct {
	Port       int `yaml:"port"`
	TargetPort any `yaml:"targetPort"`
}

type k8sService struct {
	APIVersion string  `yaml:"apiVersion"`
	Kind       string  `yaml:"kind"`
	Metadata   k8sMeta `yaml:"metadata"`
	Spec       struct {
		Selector map[string]string `yaml:"selector"`
		Ports    []k8sServicePort  `yaml:"ports"`
		Type     string            `yaml:"type"`
	} `yaml:"spec"`
}

// intOrString keeps numeric template values numeric in YAML and passes placeholders through
func intOrString(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func (c ConfigurationFile) kubernetes() (string, error) {
	app := c.v("app_name", "myapp")
	port := intOrString(c.v("port", "80"))
	labels := map[string]string{"app": app}

	var deploy k8sDeployment
	deploy.APIVersion = "apps/v1"
	deploy.Kind = "Deployment"
	deploy.Metadata = k8sMeta{Name: app, Namespace: c.Environment}
	deploy.Spec.Replicas = intOrString(c.v("replicas", "3"))
	deploy.Spec.Selector.MatchLabels = labels
	deploy.Spec.Template.Metadata = k8sMeta{Labels: labels}
	deploy.Spec.Template.Spec.Containers = []k8sContainer{{
		Name:  app,
		Image: c.v("image", "nginx:latest"),
		Ports: []k8sPort{{ContainerPort: port}},
		Env:   []k8sEnvVar{{Name: "ENVIRONMENT", Value: c.Environment}},
	}}

	var svc k8sService
	svc.APIVersion = "v1"
	svc.Kind = "Service"
	svc.Metadata = k8sMeta{Name: app + "-service", Namespace: c.Environment}
	svc.Spec.Selector = labels
	svc.Spec.Ports = []k8sServicePort{{Port: 80, TargetPort: port}}
	svc.Spec.Type = "ClusterIP"

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range []any{deploy, svc} {
		if err := enc.Encode(doc); err != nil {
			return "", fmt.Errorf("failed to encode kubernetes manifest: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode kubernetes manifest: %w", err)
	}
	return buf.String(), nil
}
