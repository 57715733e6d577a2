package config

import (
	"fmt"
	"os"
)

// Template returns a commented example configuration.
func Template() string {
	return runtimeTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(runtimeTemplate), 0o600)
}

const runtimeTemplate = `# tcpevents configuration

[receiver]
port = 1024
# empty disables the cookie handshake
password = ""
prefix = "TCP"
include_source_address = true
node = "tcpevents"
write_timeout = "5s"
outbox_size = 64
max_line_bytes = 1048576

[sender]
port = 1024
connect_timeout = "5s"
communication_timeout = "5s"
max_response_reads = 128

[admin]
# empty disables the HTTP admin surface
addr = ""
token = ""
cors_origins = ["http://localhost:3000"]
`
