package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"fuppas-erp/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AgentService answers manager support questions and writes backup manifests.
type AgentService interface {
	AnswerSupportQuestion(ctx context.Context, question, shopContext string) (*core.SupportReply, error)
	WriteBackupManifest(ctx context.Context, env *core.BackupEnvelope) (*core.BackupManifest, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// AnswerSupportQuestion asks the model for a structured answer to a how-do-I
// question about the shop system. shopContext carries the caller's branch name
// and role so answers can reference what the user actually sees.
func (a *Agent) AnswerSupportQuestion(ctx context.Context, question, shopContext string) (*core.SupportReply, error) {
	prompt := fmt.Sprintf(`You are the in-app support assistant for a multi-branch printing and stationery shop system.
Managers ask how to use the system: stock transfers, inventory, printing jobs, point of sale, reports, backups.
Rules:
1. Answer only about this system. For anything else, say it is out of scope.
2. Be concrete: name the screen and the button, not general advice.
3. Stock transfers resolve once: PENDING requests are approved or denied by the destination branch, and approval moves the stock.
4. Keep the answer under 150 words.

Context about the asker:
%s

Question: %s`, shopContext, question)

	raw, err := a.structuredCall(ctx, prompt, "support_reply",
		"A structured answer from the in-app support assistant", core.SupportReply{})
	if err != nil {
		return nil, err
	}

	var reply core.SupportReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if reply.Message == "" {
		return nil, fmt.Errorf("empty support reply")
	}
	return &reply, nil
}

// WriteBackupManifest asks the model to describe a backup in plain language.
// Callers fall back to a canned summary when this errors.
func (a *Agent) WriteBackupManifest(ctx context.Context, env *core.BackupEnvelope) (*core.BackupManifest, error) {
	prompt := fmt.Sprintf(`You are writing the manifest line for a data backup of a printing shop system.
Describe, in one or two plain sentences, what this backup contains. Mention counts only when notable.
Dataset: %d branches, %d manager accounts, %d inventory records, %d stock transfers, %d customers, %d jobs, %d transactions.
Generated at: %s`,
		len(env.Data.Branches), len(env.Data.Managers), len(env.Data.Inventory),
		len(env.Data.Transfers), len(env.Data.Customers), len(env.Data.Jobs),
		len(env.Data.Transactions), env.GeneratedAt.Format("2006-01-02 15:04 MST"))

	raw, err := a.structuredCall(ctx, prompt, "backup_manifest",
		"A plain-language manifest describing a data backup", core.BackupManifest{})
	if err != nil {
		return nil, err
	}

	var manifest core.BackupManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if manifest.Summary == "" {
		return nil, fmt.Errorf("empty backup manifest")
	}
	return &manifest, nil
}

// structuredCall runs one Responses API call with strict JSON schema output
// generated from the target struct.
func (a *Agent) structuredCall(ctx context.Context, prompt, schemaName, schemaDesc string, target any) ([]byte, error) {
	schemaStruct := generateSchema(target)
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        schemaName,
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt(schemaDesc),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return []byte(content), nil
}

func generateSchema(v any) interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v)
}
