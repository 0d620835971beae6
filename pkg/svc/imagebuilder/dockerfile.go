package imagebuilder

import (
	"fmt"
	"strings"

	v1alpha1 "github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
)

// Canonical file names inside the build context and the scoring container.
// The build context writes every input under these names so the rendered
// Dockerfile never depends on host paths.
const (
	runtimeDir           = "/var/msail"
	dockerfileName       = "Dockerfile"
	scriptFileName       = "score.lua"
	modelFileName        = "model.bin"
	dependenciesFileName = "dependencies.yaml"
)

// RenderDockerfile renders the Dockerfile for a scoring image build.
//
// The rendered file layers the dependency descriptor's system and interpreter
// packages on the base image, copies the scoring inputs into the runtime
// directory, and wires the serve entrypoint to them through environment
// variables.
func RenderDockerfile(opts BuildOptions) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "FROM %s\n", opts.BaseImage)

	renderSystemPackages(&builder, opts.Dependencies.System)
	renderInterpreterPackages(&builder, opts.Dependencies.Packages)

	builder.WriteString("\n")
	fmt.Fprintf(&builder, "COPY %s %s/%s\n", scriptFileName, runtimeDir, scriptFileName)
	fmt.Fprintf(&builder, "COPY %s %s/%s\n", modelFileName, runtimeDir, modelFileName)

	if opts.DependenciesPath != "" {
		fmt.Fprintf(&builder, "COPY %s %s/%s\n", dependenciesFileName, runtimeDir, dependenciesFileName)
	}

	builder.WriteString("\n")
	fmt.Fprintf(
		&builder,
		"ENV MSAIL_MODEL=%s/%s \\\n    MSAIL_SCRIPT=%s/%s\n",
		runtimeDir, modelFileName, runtimeDir, scriptFileName,
	)

	builder.WriteString("\n")
	fmt.Fprintf(&builder, "EXPOSE %d\n", opts.Port)

	builder.WriteString("\nENTRYPOINT [\"msail\", \"serve\"]\n")

	return builder.String()
}

// renderSystemPackages emits a single apt-get layer for the descriptor's
// operating system packages.
func renderSystemPackages(builder *strings.Builder, packages []string) {
	if len(packages) == 0 {
		return
	}

	builder.WriteString("\nRUN apt-get update \\\n")
	builder.WriteString(" && apt-get install -y --no-install-recommends")

	for _, pkg := range packages {
		builder.WriteString(" " + pkg)
	}

	builder.WriteString(" \\\n && rm -rf /var/lib/apt/lists/*\n")
}

// renderInterpreterPackages emits a single luarocks layer for the descriptor's
// interpreter packages, honoring pinned versions.
func renderInterpreterPackages(builder *strings.Builder, packages []v1alpha1.Package) {
	if len(packages) == 0 {
		return
	}

	builder.WriteString("\nRUN")

	for i, pkg := range packages {
		if i > 0 {
			builder.WriteString(" \\\n &&")
		}

		builder.WriteString(" luarocks install " + pkg.Name)

		if pkg.Version != "" {
			builder.WriteString(" " + pkg.Version)
		}
	}

	builder.WriteString("\n")
}
