package platforms

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
)

// posixExeCandidates are looked up under base_prefix, in order
var posixExeCandidates = []string{
	"_conda",
	filepath.Join("bin", "conda"),
	filepath.Join("bin", "micromamba"),
}

// windowsExeCandidates are the Windows equivalents
var windowsExeCandidates = []string{
	"_conda.exe",
	filepath.Join("Scripts", "conda.exe"),
	filepath.Join("Library", "bin", "micromamba.exe"),
}

// resolveCondaExe finds the executable used to activate the environment:
// explicit configuration, then $CONDA_EXE, then the first candidate
// present under base_prefix, then plain "conda" from PATH.
func (b *baseMenu) resolveCondaExe(candidates []string) string {
	if b.condaExe != "" {
		return b.condaExe
	}

	exe := b.deps.Config.Activation.CondaExe
	if exe == "" {
		exe = b.deps.Getenv("CONDA_EXE")
	}
	if exe == "" {
		for _, candidate := range candidates {
			path := filepath.Join(b.basePrefix, candidate)
			if filesystem.Exists(b.deps.FS, path) {
				exe = path
				break
			}
		}
	}
	if exe == "" {
		exe = "conda"
	}

	b.logger.Debug().Str("conda_exe", exe).Msg("Resolved activation executable")
	b.condaExe = exe
	return exe
}

// isMicromamba reports whether exe is micromamba. The file name decides
// when it is conclusive; otherwise `<exe> info` is asked, but only when
// exe exists on disk.
func (b *baseMenu) isMicromamba(exe string) bool {
	if b.micromamba != nil {
		return *b.micromamba
	}

	result := false
	name := strings.ToLower(strings.TrimSuffix(baseName(exe), ".exe"))
	switch {
	case name == "micromamba":
		result = true
	case filesystem.Exists(b.deps.FS, exe):
		logging.LogCommand(exe, []string{"info"})
		out, err := b.deps.Runner.Run(exe, "info")
		if err != nil {
			b.logger.Debug().Err(err).Str("exe", exe).Msg("Could not query activation executable")
		}
		result = strings.Contains(string(out), "micromamba")
	}

	b.micromamba = &result
	return result
}

// bashActivation is the line that activates the environment in bash
func (b *baseMenu) bashActivation() string {
	exe := b.resolveCondaExe(posixExeCandidates)
	if b.isMicromamba(exe) {
		return `eval "$("` + exe + `" shell activate -s bash "` + b.prefix + `")"`
	}
	return `eval "$("` + exe + `" shell.bash activate "` + b.prefix + `")"`
}
