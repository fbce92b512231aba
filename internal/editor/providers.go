package editor

import (
	"context"
	"encoding/json"
	"fmt"

	"go-monaco-bridge/internal/monaco"
)

// HoverProvider answers a hover request at pos. A nil Hover shows nothing.
type HoverProvider func(ctx context.Context, pos monaco.Position) (*monaco.Hover, error)

// CodeActionProvider offers code actions for r. A nil list offers none.
type CodeActionProvider func(ctx context.Context, r monaco.Range, actx monaco.CodeActionContext) (*monaco.CodeActionList, error)

// CodeLensProvider supplies code lenses. Resolve is optional and fills in
// the command of a lens returned without one.
type CodeLensProvider struct {
	Provide func(ctx context.Context) (*monaco.CodeLensList, error)
	Resolve func(ctx context.Context, lens monaco.CodeLens) (*monaco.CodeLens, error)
}

// RegisterHoverProvider registers provider for languageID.
func (e *CodeEditor) RegisterHoverProvider(ctx context.Context, languageID string, provider HoverProvider) {
	e.accessor.RegisterEvent("HoverProvider"+languageID, func(ctx context.Context, args []string) (string, error) {
		var pos monaco.Position
		if err := decodeArg(args, 0, &pos); err != nil {
			return "", fmt.Errorf("hover: %w", err)
		}
		hover, err := provider(ctx, pos)
		return eventResult("hover", hover, err)
	})
	e.channel.Invoke(ctx, "registerHoverProvider", languageID)
}

// RegisterCodeActionProvider registers provider for languageID. Edits in
// the returned actions apply to the editor's model.
func (e *CodeEditor) RegisterCodeActionProvider(ctx context.Context, languageID string, provider CodeActionProvider) {
	e.accessor.RegisterEvent("ProvideCodeActions"+languageID, func(ctx context.Context, args []string) (string, error) {
		var r monaco.Range
		var actx monaco.CodeActionContext
		if err := decodeArg(args, 0, &r); err != nil {
			return "", fmt.Errorf("code actions: %w", err)
		}
		if err := decodeArg(args, 1, &actx); err != nil {
			return "", fmt.Errorf("code actions: %w", err)
		}
		list, err := provider(ctx, r, actx)
		return eventResult("code actions", list, err)
	})
	e.channel.Invoke(ctx, "registerCodeActionProvider", languageID)
}

// RegisterCodeLensProvider registers provider for languageID.
func (e *CodeEditor) RegisterCodeLensProvider(ctx context.Context, languageID string, provider CodeLensProvider) {
	e.accessor.RegisterEvent("ProvideCodeLenses"+languageID, func(ctx context.Context, _ []string) (string, error) {
		if provider.Provide == nil {
			return "", nil
		}
		list, err := provider.Provide(ctx)
		return eventResult("code lenses", list, err)
	})
	e.accessor.RegisterEvent("ResolveCodeLens"+languageID, func(ctx context.Context, args []string) (string, error) {
		var lens monaco.CodeLens
		if err := decodeArg(args, 0, &lens); err != nil {
			return "", fmt.Errorf("resolve code lens: %w", err)
		}
		if provider.Resolve == nil {
			return eventResult("resolve code lens", &lens, nil)
		}
		resolved, err := provider.Resolve(ctx, lens)
		return eventResult("resolve code lens", resolved, err)
	})
	e.channel.Invoke(ctx, "registerCodeLensProvider", languageID)
}

func decodeArg(args []string, i int, v any) error {
	if i >= len(args) {
		return fmt.Errorf("missing argument %d", i)
	}
	if err := json.Unmarshal([]byte(args[i]), v); err != nil {
		return fmt.Errorf("decode argument %d: %w", i, err)
	}
	return nil
}

// eventResult encodes a provider result. A nil result is sent as "", which
// the view treats as nothing to show.
func eventResult[T any](what string, v *T, err error) (string, error) {
	if err != nil || v == nil {
		return "", err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return string(raw), nil
}
