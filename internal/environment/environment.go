// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"slices"
	"strings"
)

type (
	// Var is one projected variable.
	Var struct {
		Name  string
		Value string
	}

	// VarSet is a projected environment, sorted by name.
	VarSet []Var
)

var (
	// deniedNames are never forwarded.
	deniedNames = []string{
		// shell and host
		"_", "PATH", "HOME", "SHELL", "PWD", "OLDPWD", "SHLVL", "USER", "LOGNAME",
		"HOSTNAME", "HOSTTYPE", "OSTYPE", "MACHTYPE", "LANG", "LANGUAGE", "TERM",
		"COLORTERM", "TERM_PROGRAM", "TERM_PROGRAM_VERSION", "TMPDIR", "TMP", "TEMP",
		"EDITOR", "VISUAL", "PAGER", "LESS", "LS_COLORS", "MAIL", "DISPLAY", "TZ",
		"SSH_AUTH_SOCK", "SSH_AGENT_PID", "SSH_CLIENT", "SSH_CONNECTION", "SSH_TTY",
		"DBUS_SESSION_BUS_ADDRESS", "PS1", "PS2", "PROMPT_COMMAND", "HISTFILE",
		"HISTSIZE", "HISTFILESIZE", "INIT_CWD",
		// tooling
		"NODE", "NODE_ENV_PATH", "NODE_OPTIONS", "NODE_PATH", "NVM_DIR", "NVM_BIN",
		"NVM_INC", "NVM_CD_FLAGS", "GOPATH", "GOROOT", "GOFLAGS", "EXEC_PATH",
		"MANPATH", "INFOPATH", "CI",
		// credentials
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_SECURITY_TOKEN", "AWS_PROFILE", "AWS_DEFAULT_PROFILE",
		"AWS_CONFIG_FILE", "AWS_SHARED_CREDENTIALS_FILE", "AWS_CA_BUNDLE",
		// reserved by the Lambda runtime
		"AWS_REGION", "AWS_DEFAULT_REGION", "AWS_EXECUTION_ENV",
		"LAMBDA_TASK_ROOT", "LAMBDA_RUNTIME_DIR", "TZDIR", "_HANDLER",
		"_X_AMZN_TRACE_ID", "AWS_XRAY_CONTEXT_MISSING", "AWS_XRAY_DAEMON_ADDRESS",
	}

	// deniedPrefixes drop whole families of variables.
	deniedPrefixes = []string{
		"LC_", "XDG_", "npm_", "NPM_", "YARN_", "PNPM_", "BASH_FUNC_",
		"AWS_LAMBDA_", "_AWS_XRAY_", "GIT_", "SAM_CLI_",
	}
)

// Denied reports whether name is excluded by the built-in denylist or by
// extra.
func Denied(name string, extra []string) bool {
	if slices.Contains(deniedNames, name) || slices.Contains(extra, name) {
		return true
	}
	for _, prefix := range deniedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Project filters environ ("NAME=value" entries, as from os.Environ) and
// returns the remaining variables sorted by name. A later entry for the same
// name wins. Embedded newlines are escaped as the two characters `\n`.
func Project(environ, extraDeny []string) VarSet {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		// Windows keeps per-drive working directories in "=C:" style entries.
		if !ok || name == "" {
			continue
		}
		if Denied(name, extraDeny) {
			continue
		}
		values[name] = value
	}

	set := make(VarSet, 0, len(values))
	for name, value := range values {
		set = append(set, Var{Name: name, Value: EscapeNewlines(value)})
	}
	slices.SortFunc(set, func(a, b Var) int { return strings.Compare(a.Name, b.Name) })
	return set
}

// EscapeNewlines replaces CRLF and LF line breaks with a literal `\n`.
func EscapeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", `\n`)
	return strings.ReplaceAll(value, "\n", `\n`)
}

// lookup returns the value of name, if projected.
func (s VarSet) lookup(name string) (string, bool) {
	i, found := slices.BinarySearchFunc(s, name, func(v Var, target string) int {
		return strings.Compare(v.Name, target)
	})
	if !found {
		return "", false
	}
	return s[i].Value, true
}

// Names returns the projected names in order.
func (s VarSet) Names() []string {
	names := make([]string, len(s))
	for i, v := range s {
		names[i] = v.Name
	}
	return names
}
