// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/crowdfund/blob/master/LICENSE.md.

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/insolar/crowdfund/internal/failure"
	"github.com/insolar/crowdfund/internal/models"
	"github.com/insolar/crowdfund/internal/normalize"
)

// Ledger is the campaign surface the API serves, normally the caching store.
type Ledger interface {
	Campaigns(ctx context.Context) ([]models.Campaign, error)
	Campaign(ctx context.Context, id int64) (models.Campaign, error)
	Donors(ctx context.Context, id int64) ([]models.Donor, error)
	CampaignsByOwner(ctx context.Context, owner common.Address) ([]models.Campaign, error)
	Contribution(ctx context.Context, id int64, donor common.Address) (models.Contribution, error)
	DonatedCampaigns(ctx context.Context, donor common.Address) ([]models.Donation, error)
	CreateCampaign(ctx context.Context, f models.CampaignFields) (models.Receipt, error)
	Contribute(ctx context.Context, id int64, amount string) (models.Receipt, error)
	Withdraw(ctx context.Context, id int64) (models.Receipt, error)
}

type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Session interface {
	Account() (common.Address, bool)
	Connect(ctx context.Context) (common.Address, error)
	Disconnect(ctx context.Context) error
}

type CrowdfundServer struct {
	ledger   Ledger
	uploader Uploader
	session  Session
	images   *normalize.ImageResolver
	log      logrus.FieldLogger

	verifyImages bool
}

func NewCrowdfundServer(
	ledger Ledger,
	uploader Uploader,
	session Session,
	images *normalize.ImageResolver,
	log logrus.FieldLogger,
) *CrowdfundServer {
	return &CrowdfundServer{ledger: ledger, uploader: uploader, session: session, images: images, log: log}
}

// WithImageVerification makes GetCampaign probe the campaign image and fall back to the
// placeholder when the gateway cannot serve it.
func (s *CrowdfundServer) WithImageVerification() *CrowdfundServer {
	s.verifyImages = true
	return s
}

func (s *CrowdfundServer) fail(ctx echo.Context, err error) error {
	code := failure.CodeOf(err)
	if code == failure.CodeNetworkOrLedger {
		s.log.WithField("path", ctx.Path()).Error(err)
	}
	return ctx.JSON(code.HTTPStatus(), NewErrorMessage(err))
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, failure.Newf(failure.CodeInvalidInput, "%q is not an account address", s)
	}
	return common.HexToAddress(s), nil
}

func (s *CrowdfundServer) ListCampaigns(ctx echo.Context) error {
	campaigns, err := s.ledger.Campaigns(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, campaigns)
}

func (s *CrowdfundServer) GetCampaign(ctx echo.Context, id int64) error {
	campaign, err := s.ledger.Campaign(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if s.verifyImages && s.images != nil {
		campaign.Image = s.images.Verify(ctx.Request().Context(), campaign.Image)
	}
	return ctx.JSON(http.StatusOK, campaign)
}

func (s *CrowdfundServer) ListDonors(ctx echo.Context, id int64) error {
	donors, err := s.ledger.Donors(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, donors)
}

func (s *CrowdfundServer) GetContribution(ctx echo.Context, id int64, address string) error {
	donor, err := parseAddress(address)
	if err != nil {
		return s.fail(ctx, err)
	}
	contribution, err := s.ledger.Contribution(ctx.Request().Context(), id, donor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, contribution)
}

func (s *CrowdfundServer) ListOwnerCampaigns(ctx echo.Context, address string) error {
	owner, err := parseAddress(address)
	if err != nil {
		return s.fail(ctx, err)
	}
	campaigns, err := s.ledger.CampaignsByOwner(ctx.Request().Context(), owner)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, campaigns)
}

func (s *CrowdfundServer) ListDonatedCampaigns(ctx echo.Context, address string) error {
	donor, err := parseAddress(address)
	if err != nil {
		return s.fail(ctx, err)
	}
	donations, err := s.ledger.DonatedCampaigns(ctx.Request().Context(), donor)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, donations)
}

func (s *CrowdfundServer) CreateCampaign(ctx echo.Context) error {
	var req CreateCampaignRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("malformed campaign form"))
	}
	deadline, err := normalize.ParseDeadline(req.Deadline)
	if err != nil {
		return s.fail(ctx, err)
	}
	receipt, err := s.ledger.CreateCampaign(ctx.Request().Context(), models.CampaignFields{
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		Deadline:    deadline,
		State:       req.State,
		Region:      req.Region,
		Image:       req.Image,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, receipt)
}

func (s *CrowdfundServer) Contribute(ctx echo.Context, id int64) error {
	var req ContributeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("malformed contribution"))
	}
	receipt, err := s.ledger.Contribute(ctx.Request().Context(), id, req.Amount)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, receipt)
}

func (s *CrowdfundServer) Withdraw(ctx echo.Context, id int64) error {
	receipt, err := s.ledger.Withdraw(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, receipt)
}

func (s *CrowdfundServer) UploadImage(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`file` is required"))
	}
	file, err := header.Open()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("failed to read `file`"))
	}
	defer file.Close()

	cid, err := s.uploader.Upload(ctx.Request().Context(), header.Filename, file)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ImageResponse{Image: cid, URL: s.images.Resolve(cid)})
}

func (s *CrowdfundServer) sessionResponse() SessionResponse {
	account, ok := s.session.Account()
	if !ok {
		return SessionResponse{}
	}
	return SessionResponse{Connected: true, Account: account.Hex()}
}

func (s *CrowdfundServer) GetSession(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.sessionResponse())
}

func (s *CrowdfundServer) Connect(ctx echo.Context) error {
	if _, err := s.session.Connect(ctx.Request().Context()); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.sessionResponse())
}

func (s *CrowdfundServer) Disconnect(ctx echo.Context) error {
	if err := s.session.Disconnect(ctx.Request().Context()); err != nil {
		if failure.CodeOf(err).Blocking() {
			return s.fail(ctx, err)
		}
		// the session is cleared even when the wallet could not revoke
		s.log.WithError(err).Warn("disconnect finished with an error")
	}
	return ctx.JSON(http.StatusOK, s.sessionResponse())
}
