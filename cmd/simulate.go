package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Medic423/medport-sub003/core/bid"
	"github.com/Medic423/medport-sub003/core/match"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/request"
	"github.com/Medic423/medport-sub003/infra/logger"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a demo coordination round against an in-process service",
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

// runSimulate seeds two agencies, creates a request, ranks candidates and
// walks one bid through acceptance. Useful as a smoke test of the full wiring
// without external collaborators.
func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	log := logger.New("simulate")
	for _, f := range []model.Facility{
		{ID: "harrisburg-general", Name: "Harrisburg General", Location: model.GeoPoint{Lat: 40.2732, Lon: -76.8867}},
		{ID: "philadelphia-presby", Name: "Philadelphia Presbyterian", Location: model.GeoPoint{Lat: 39.9526, Lon: -75.1652}},
	} {
		if err := svc.Registry.PutFacility(f); err != nil {
			return err
		}
	}
	for _, a := range []model.Agency{
		{ID: "keystone-ems", Name: "Keystone EMS", HomeFacilityID: "harrisburg-general"},
		{ID: "liberty-medical", Name: "Liberty Medical Transport", HomeFacilityID: "philadelphia-presby"},
	} {
		if err := svc.Registry.PutAgency(a); err != nil {
			return err
		}
	}
	for _, u := range []model.Unit{
		{ID: "keystone-cct-1", AgencyID: "keystone-ems", Level: model.LevelCCT, Status: model.UnitAvailable},
		{ID: "liberty-als-2", AgencyID: "liberty-medical", Level: model.LevelALS, Status: model.UnitAvailable},
	} {
		if err := svc.Registry.PutUnit(u); err != nil {
			return err
		}
	}

	req, err := svc.Store.Create(ctx, request.CreateCriteria{
		PatientRef:       "PT-DEMO",
		OriginID:         "harrisburg-general",
		DestinationID:    "philadelphia-presby",
		Level:            model.LevelALS,
		Priority:         model.PriorityUrgent,
		RevenuePotential: 950,
	})
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	log.Infof("created request %s", req.ID)

	candidates, err := svc.Engine.FindMatches(ctx, match.Criteria{
		Level:            req.Level,
		OriginID:         req.OriginID,
		DestinationID:    req.DestinationID,
		RevenuePotential: req.RevenuePotential,
	})
	if err != nil {
		return fmt.Errorf("find matches: %w", err)
	}
	for i, c := range candidates {
		log.Infof("candidate %d: agency=%s unit=%s score=%.1f reasons=%v", i+1, c.AgencyID, c.UnitID, c.Score, c.Reasons)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates ranked")
	}

	winner := candidates[0]
	b, err := svc.Ledger.Submit(ctx, bid.SubmitInput{
		RequestID: req.ID,
		AgencyID:  winner.AgencyID,
		UnitID:    winner.UnitID,
		UnitType:  req.Level,
		Amount:    req.RevenuePotential,
	})
	if err != nil {
		return fmt.Errorf("submit bid: %w", err)
	}
	if err := svc.Ledger.Accept(ctx, b.ID, "simulate"); err != nil {
		return fmt.Errorf("accept bid: %w", err)
	}

	final, err := svc.Store.Get(ctx, req.ID)
	if err != nil {
		return err
	}
	log.Infof("request %s now %s, unit %s en route", final.ID, final.Status, final.AssignedUnitID)
	return nil
}
