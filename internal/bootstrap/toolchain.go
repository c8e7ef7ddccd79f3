package bootstrap

import "strings"

// Command is one external invocation: a binary name plus its arguments.
type Command struct {
	Name string
	Args []string
}

// String renders the command the way an operator would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Toolchain describes the four invocations the bootstrap sequence delegates
// to. Install commands receive the manifest path as their final argument.
type Toolchain struct {
	// RuntimeVersion queries the runtime interpreter, proving it is present.
	RuntimeVersion Command

	// ManagerVersion queries the package manager, proving it is present.
	ManagerVersion Command

	// ManagerUpgrade upgrades the package manager to its latest version.
	ManagerUpgrade Command

	// Install installs from a manifest; the manifest path is appended.
	Install Command
}

// PythonToolchain returns the Toolchain for a Python interpreter with pip
// driven through "-m pip", which works regardless of a pip shim on PATH.
func PythonToolchain(runtime string) Toolchain {
	if runtime == "" {
		runtime = "python3"
	}
	return Toolchain{
		RuntimeVersion: Command{Name: runtime, Args: []string{"--version"}},
		ManagerVersion: Command{Name: runtime, Args: []string{"-m", "pip", "--version"}},
		ManagerUpgrade: Command{Name: runtime, Args: []string{"-m", "pip", "install", "--upgrade", "pip"}},
		Install:        Command{Name: runtime, Args: []string{"-m", "pip", "install", "-r"}},
	}
}

// InstallCommand returns the install invocation for the given manifest.
func (tc Toolchain) InstallCommand(manifest string) Command {
	args := make([]string, 0, len(tc.Install.Args)+1)
	args = append(args, tc.Install.Args...)
	args = append(args, manifest)
	return Command{Name: tc.Install.Name, Args: args}
}
