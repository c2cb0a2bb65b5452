package pybox

import (
	"errors"
	"reflect"
	"testing"
)

func TestComposeMissingInput(t *testing.T) {
	_, _, err := composeRequest(nil, nil)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestComposeInfersEntrypoint(t *testing.T) {
	_, meta, err := composeRequest(Files{"main.py": "print(1)"}, nil)
	if err != nil {
		t.Fatalf("composeRequest: %v", err)
	}
	if meta.Entrypoint != "main.py" {
		t.Errorf("Entrypoint = %q, want main.py", meta.Entrypoint)
	}
}

func TestComposeNoEntrypointFound(t *testing.T) {
	_, _, err := composeRequest(Files{"data.txt": "1,2,3"}, nil)
	if !errors.Is(err, ErrNoEntrypoint) {
		t.Fatalf("err = %v, want ErrNoEntrypoint", err)
	}
}

func TestComposeShorthandOptions(t *testing.T) {
	src := Files{"app.py": "print(1)"}
	opts := []ExecOption{
		WithEntrypoint("app.py"),
		WithImage("python:3.12-slim"),
		WithRequirements("requests\n"),
		WithPreCommands("apt-get update"),
		WithStdin("input"),
		WithEnv("MODE=test", "DEBUG=1"),
		WithArgs("--fast"),
		WithConfig(ExecutionConfig{TimeoutSeconds: 60, MemoryMB: 512}),
	}

	_, meta, err := composeRequest(src, opts)
	if err != nil {
		t.Fatalf("composeRequest: %v", err)
	}

	want := &Metadata{
		Entrypoint:      "app.py",
		DockerImage:     "python:3.12-slim",
		RequirementsTxt: "requests\n",
		PreCommands:     []string{"apt-get update"},
		Stdin:           "input",
		Config:          &ExecutionConfig{TimeoutSeconds: 60, MemoryMB: 512},
		EnvVars:         []string{"MODE=test", "DEBUG=1"},
		ScriptArgs:      []string{"--fast"},
	}
	if !reflect.DeepEqual(meta, want) {
		t.Errorf("metadata = %+v, want %+v", meta, want)
	}
}

func TestComposeMetadataWinsOverShorthand(t *testing.T) {
	full := &Metadata{Entrypoint: "real.py", Stdin: "from metadata"}

	_, meta, err := composeRequest(Files{"real.py": "", "other.py": ""}, []ExecOption{
		WithMetadata(full),
		WithEntrypoint("other.py"),
		WithStdin("from shorthand"),
		WithEnv("IGNORED=1"),
	})
	if err != nil {
		t.Fatalf("composeRequest: %v", err)
	}

	if meta != full {
		t.Fatal("metadata was not passed through verbatim")
	}
	if meta.Entrypoint != "real.py" || meta.Stdin != "from metadata" || meta.EnvVars != nil {
		t.Errorf("shorthand options leaked into metadata: %+v", meta)
	}
}
