package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	configFlags := []string{"-c", "-config", "--config"}
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", ":8080"}, configFlags, []string{"-c", "conf.json"}},
		{"equals form", []string{"--config=alt.json", "-m", "memory"}, configFlags, []string{"--config=alt.json"}},
		{"order preserved", []string{"--config=a.json", "-s", "k", "-c", "b.json"}, configFlags, []string{"--config=a.json", "-c", "b.json"}},
		{"nothing allowed present", []string{"-r", ":50051", "--dsn=postgres://x", "stray"}, configFlags, nil},
		{"trailing flag without value", []string{"-a", ":8080", "-c"}, configFlags, []string{"-c"}},
		{"dash token is not a value", []string{"-c", "-m", "memory"}, configFlags, []string{"-c"}},
		{"equals value may start with dash", []string{"--config=-odd.json"}, configFlags, []string{"--config=-odd.json"}},
		{"several allowed flags", []string{"-a", ":8080", "-r", ":50051", "-m", "memory"}, []string{"-a", "-m"}, []string{"-a", ":8080", "-m", "memory"}},
		{"positional arguments dropped", []string{"serve", "-c", "c.json", "extra"}, configFlags, []string{"-c", "c.json"}},
		{"empty", nil, configFlags, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short -c", []string{"-c", "/etc/bugradar.json"}, "/etc/bugradar.json"},
		{"single dash long", []string{"-config", "/etc/long.json"}, "/etc/long.json"},
		{"double dash with equals", []string{"--config=/etc/eq.json", "-a", ":8080"}, "/etc/eq.json"},
		{"mixed with server flags", []string{"-a", ":8080", "-c", "conf.json", "-m", "memory"}, "conf.json"},
		{"absent", []string{"-a", ":8080"}, ""},
		{"last wins", []string{"-c", "one.json", "-config", "two.json"}, "two.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}

func TestJsonConfigFlags_ReadsOsArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"bugradar", "-c", "/path/short.json"}
	assert.Equal(t, "/path/short.json", JsonConfigFlags())

	os.Args = []string{"bugradar", "-x", "1"}
	assert.Empty(t, JsonConfigFlags())
}
