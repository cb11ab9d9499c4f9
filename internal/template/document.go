// SPDX-License-Identifier: MPL-2.0

package template

const (
	// FormatVersion is the CloudFormation template format version.
	FormatVersion = "2010-09-09"
	// ServerlessTransform enables the SAM resource types.
	ServerlessTransform = "AWS::Serverless-2016-10-31"
	// DefaultDescription is used when Initialize gets an empty description.
	DefaultDescription = "SAM Template for aws-lambda"

	// FunctionType is the resource type of generated functions.
	FunctionType = "AWS::Serverless::Function"
	// LayerType is the resource type of the common layer.
	LayerType = "AWS::Serverless::LayerVersion"
	// DefaultHandler is the handler of every generated function.
	DefaultHandler = "index"
	// BuildMethodESBuild is the SAM build method for functions.
	BuildMethodESBuild = "esbuild"
	// EventTypeAPI is the event source type of route events.
	EventTypeAPI = "Api"
	// FunctionSuffix is appended to the function name to form its logical ID.
	FunctionSuffix = "Function"
)

type (
	// Document is the full template model.
	Document struct {
		Description string
		Globals     Globals
		// Layer is the optional shared layer, listed before the functions.
		Layer     *Layer
		Functions []*Function
	}

	// Globals are settings shared by every function and API.
	Globals struct {
		Timeout    int
		MemorySize int
		Tracing    string
		// APITracing is rendered as True or False.
		APITracing bool
	}

	// Layer is an AWS::Serverless::LayerVersion resource.
	Layer struct {
		LogicalID          string
		ContentURI         string
		CompatibleRuntimes []string
		Architectures      []string
		// BuildMethod is usually the runtime identifier.
		BuildMethod string
	}

	// EnvVar is one entry of a function's environment.
	EnvVar struct {
		Name  string
		Value string
	}

	// Function is an AWS::Serverless::Function resource.
	Function struct {
		// Name is the resource directory name; LogicalID is Name + "Function".
		Name          string
		LogicalID     string
		CodeURI       string
		Handler       string
		Runtime       string
		Architectures []string
		// Layers are logical IDs rendered as !Ref entries.
		Layers      []string
		Environment []EnvVar
		Events      []Event
		Metadata    *BuildMetadata
	}

	// Event is an Api event source of a function.
	Event struct {
		// Name is the key under Events.
		Name string
		Path string
		// Method is rendered lower case.
		Method string
	}

	// BuildMetadata is the esbuild metadata block of a function.
	BuildMetadata struct {
		Minify      bool
		Target      string
		Sourcemap   bool
		EntryPoints []string
	}

	// FunctionSpec holds the arguments of EmitFunction.
	FunctionSpec struct {
		Name          string
		CodeURI       string
		Runtime       string
		Architectures []string
		Environment   []EnvVar
		Layers        []string
	}
)

// LogicalID returns the resource key of the function named name.
func LogicalID(name string) string {
	return name + FunctionSuffix
}
