package pybox

// ExecOption customizes one submission. Options are shorthand for metadata
// fields; WithMetadata supplies the whole document instead and wins over
// every shorthand option (the two are never merged field by field).
type ExecOption func(*execOptions)

type execOptions struct {
	metadata *Metadata

	entrypoint   string
	image        string
	requirements string
	preCommands  []string
	stdin        string
	envVars      []string
	scriptArgs   []string
	config       *ExecutionConfig
}

// WithMetadata submits the given metadata document verbatim. All shorthand
// options on the same call are ignored.
func WithMetadata(m *Metadata) ExecOption {
	return func(o *execOptions) { o.metadata = m }
}

// WithEntrypoint names the archive member to execute. Without it the
// entrypoint is inferred from the archive (see DetectEntrypoint).
func WithEntrypoint(path string) ExecOption {
	return func(o *execOptions) { o.entrypoint = path }
}

// WithImage selects the runtime image.
func WithImage(image string) ExecOption {
	return func(o *execOptions) { o.image = image }
}

// WithRequirements supplies requirements.txt contents for pip install.
func WithRequirements(contents string) ExecOption {
	return func(o *execOptions) { o.requirements = contents }
}

// WithPreCommands adds shell commands to run before the entrypoint.
func WithPreCommands(cmds ...string) ExecOption {
	return func(o *execOptions) { o.preCommands = cmds }
}

// WithStdin provides the program's standard input.
func WithStdin(stdin string) ExecOption {
	return func(o *execOptions) { o.stdin = stdin }
}

// WithEnv adds environment assignments in "KEY=value" form.
func WithEnv(vars ...string) ExecOption {
	return func(o *execOptions) { o.envVars = vars }
}

// WithArgs passes arguments to the program.
func WithArgs(args ...string) ExecOption {
	return func(o *execOptions) { o.scriptArgs = args }
}

// WithConfig sets resource limits and policy for the execution.
func WithConfig(cfg ExecutionConfig) ExecOption {
	return func(o *execOptions) { o.config = &cfg }
}

// composeRequest turns a source plus options into the two halves of a
// submission: archive bytes and the metadata document.
func composeRequest(src Source, opts []ExecOption) ([]byte, *Metadata, error) {
	if src == nil {
		return nil, nil, ErrMissingInput
	}

	tarData, err := src.Archive()
	if err != nil {
		return nil, nil, err
	}

	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.metadata != nil {
		return tarData, o.metadata, nil
	}

	entrypoint := o.entrypoint
	if entrypoint == "" {
		entrypoint, err = DetectEntrypoint(tarData)
		if err != nil {
			return nil, nil, err
		}
	}

	return tarData, &Metadata{
		Entrypoint:      entrypoint,
		DockerImage:     o.image,
		RequirementsTxt: o.requirements,
		PreCommands:     o.preCommands,
		Stdin:           o.stdin,
		Config:          o.config,
		EnvVars:         o.envVars,
		ScriptArgs:      o.scriptArgs,
	}, nil
}
