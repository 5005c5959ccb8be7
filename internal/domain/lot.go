package domain

import (
	"context"
	"errors"
	"io"

	"github.com/ecopanier/backend/internal/domain/lotledger"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/storage"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LotDomain interface {
	CreateLot(context.Context, *model.CreateLotRequest) (*model.CreateLotResponse, error)
	UploadLotImage(context.Context, *model.UploadLotImageRequest) (*model.UploadLotImageResponse, error)
	GetLot(context.Context, *model.GetLotRequest) (*model.GetLotResponse, error)
	GetLots(context.Context, *model.GetLotsRequest) (*model.GetLotsResponse, error)
}

type lotDomain struct {
	lotRepo  repository.LotRepository
	userRepo repository.UserRepository
	storage  storage.Storage
}

func NewLotDomain(
	lotRepo repository.LotRepository,
	userRepo repository.UserRepository,
	storage storage.Storage,
) *lotDomain {
	return &lotDomain{lotRepo: lotRepo, userRepo: userRepo, storage: storage}
}

func (d *lotDomain) CreateLot(
	ctx context.Context, req *model.CreateLotRequest,
) (*model.CreateLotResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if user.Role != entity.RoleMerchant {
		return nil, errorx.New(errorx.PermissionDenied, "Only merchants can create lots")
	}

	if req.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	if req.QuantityTotal < 0 || req.OriginalPrice < 0 || req.DiscountedPrice < 0 {
		return nil, errorx.New(errorx.BadRequest, "Quantity and prices must not be negative")
	}

	if !req.PickupStart.Before(req.PickupEnd) {
		return nil, errorx.New(errorx.BadRequest, "Pickup window must start before it ends")
	}

	if req.IsFree && req.DiscountedPrice != 0 {
		return nil, errorx.New(errorx.BadRequest, "A free lot must have a zero price")
	}

	imageURLs := req.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	lot := &entity.Lot{
		Base:              entity.Base{ID: uuid.NewString()},
		MerchantID:        userID,
		Title:             req.Title,
		Category:          req.Category,
		OriginalPrice:     req.OriginalPrice,
		DiscountedPrice:   req.DiscountedPrice,
		QuantityTotal:     req.QuantityTotal,
		PickupStart:       req.PickupStart,
		PickupEnd:         req.PickupEnd,
		IsFree:            req.IsFree,
		RequiresColdChain: req.RequiresColdChain,
		IsUrgent:          req.IsUrgent,
		ImageURLs:         imageURLs,
	}
	lot.Status = lotledger.Of(lot).Status()

	if err := d.lotRepo.Create(ctx, lot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lot: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateLotResponse{ID: lot.ID}, nil
}

// UploadLotImage stores one lot photo and returns its public URL. The merchant
// passes the returned url in image_urls when creating the lot; the cleanup
// sweep deletes the object together with the lot.
func (d *lotDomain) UploadLotImage(
	ctx context.Context, req *model.UploadLotImageRequest,
) (*model.UploadLotImageResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if user.Role != entity.RoleMerchant {
		return nil, errorx.New(errorx.PermissionDenied, "Only merchants can upload lot images")
	}

	file, header, err := xcontext.HTTPRequest(ctx).FormFile("image")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the image: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Cannot get the image")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read the image: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := d.storage.Upload(ctx, &storage.UploadObject{
		Bucket:   xcontext.Configs(ctx).Lot.ImageBucket,
		Prefix:   "lots",
		FileName: header.Filename,
		Mime:     header.Header.Get("Content-Type"),
		Data:     content,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.New(errorx.Internal, "Unable to upload image")
	}

	return &model.UploadLotImageResponse{URL: resp.Url, FileName: resp.FileName}, nil
}

func (d *lotDomain) GetLot(
	ctx context.Context, req *model.GetLotRequest,
) (*model.GetLotResponse, error) {
	lot, err := d.lotRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lot")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lot: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetLotResponse{Lot: convertLot(lot)}, nil
}

func (d *lotDomain) GetLots(
	ctx context.Context, req *model.GetLotsRequest,
) (*model.GetLotsResponse, error) {
	lots, err := d.lotRepo.GetAvailableList(ctx, repository.GetLotListFilter{
		FreeOnly: req.FreeOnly,
		Offset:   req.Offset,
		Limit:    req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get lot list: %v", err)
		return nil, errorx.Unknown
	}

	clientLots := []model.Lot{}
	for i := range lots {
		clientLots = append(clientLots, convertLot(&lots[i]))
	}

	return &model.GetLotsResponse{Lots: clientLots}, nil
}
