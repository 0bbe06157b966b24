package usecase

import (
	"context"
	"fmt"

	"github.com/xilidan/transcriber/pkg/docx"
	"github.com/xilidan/transcriber/services/asr/consts"
	"github.com/xilidan/transcriber/services/asr/entity"
)

func (u *usecase) ExportText(ctx context.Context, id string) (*entity.Export, error) {
	text, err := u.texts.ReadText(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := u.exportName(ctx, id, consts.TextExt)
	if err != nil {
		return nil, err
	}

	return &entity.Export{
		Filename:    name,
		ContentType: consts.ContentTypeText,
		Content:     []byte(text),
	}, nil
}

func (u *usecase) ExportDocx(ctx context.Context, id string) (*entity.Export, error) {
	text, err := u.texts.ReadText(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := docx.Paragraph(text)
	if err != nil {
		return nil, fmt.Errorf("failed to build docx: %w", err)
	}

	name, err := u.exportName(ctx, id, consts.DocxExt)
	if err != nil {
		return nil, err
	}

	return &entity.Export{
		Filename:    name,
		ContentType: consts.ContentTypeDocx,
		Content:     content,
	}, nil
}

func (u *usecase) exportName(ctx context.Context, id, ext string) (string, error) {
	custom, _, err := u.texts.ReadCustomName(ctx, id)
	if err != nil {
		return "", err
	}
	return consts.ExportFilename(id, custom, ext), nil
}
