package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

func TestApplyMovement_SecuenciaDeTipos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 50)
	ctx := context.Background()

	steps := []struct {
		typ      entity.MovementType
		qty      int
		want     int
		recorded int
	}{
		{entity.MovementTypeIN, 10, 60, 10},
		{entity.MovementTypeOUT, 5, 55, 5},
		{entity.MovementTypeRETURN, 3, 58, 3},
		{entity.MovementTypeDAMAGED, 8, 50, 8},
		{entity.MovementTypeADJUSTMENT, 20, 20, 30},
	}
	for _, s := range steps {
		prod, mov, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: s.typ, Quantity: s.qty})
		require.NoError(t, err, s.typ)
		assert.Equal(t, s.want, prod.Quantity, s.typ)
		assert.Equal(t, s.recorded, mov.Quantity, s.typ)
		assert.Equal(t, s.want, mov.ResultingQuantity, s.typ)
	}
	assert.Equal(t, 20, f.quantity(t, p.ID))
	assert.Len(t, f.movements(t, p.ID), 6)
}

func TestApplyMovement_StockInsuficienteNoEscribe(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 5)

	_, _, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 6})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, f.quantity(t, p.ID))
	assert.Len(t, f.movements(t, p.ID), 1)
}

func TestApplyMovement_DanadoTambienRespetaCero(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 2)

	_, _, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeDAMAGED, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestApplyMovement_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: "nope", Type: entity.MovementTypeIN, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 5)
	ctx := context.Background()

	cases := []inventory.MovementInput{
		{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 0},
		{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: -1},
		{ProductID: p.ID, Type: "TRANSFER", Quantity: 1},
		{ProductID: "", Type: entity.MovementTypeIN, Quantity: 1},
	}
	for _, in := range cases {
		_, _, err := f.gateway.ApplyMovement(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
	assert.Len(t, f.movements(t, p.ID), 1)
}

func TestApplyMovement_AjusteACeroEsValido(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 7)

	prod, mov, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeADJUSTMENT, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, prod.Quantity)
	assert.Equal(t, 7, mov.Quantity)
	assert.Equal(t, 7, mov.PreviousQuantity)
}

func TestApplyMovement_ConcurrenciaSinPerderActualizaciones(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 10})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 5})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 350, f.quantity(t, p.ID))
	report, err := f.gateway.VerifyLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 101, report.Movements)
}

func TestApplyMovement_IdentidadDeSistema(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 0)
	ctx := context.Background()

	_, m1, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1})
	require.NoError(t, err)
	_, m2, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, m1.UserID, m2.UserID)

	sys, err := f.store.Users().GetByEmail(ctx, systemEmail)
	require.NoError(t, err)
	require.NotNil(t, sys)
	assert.Equal(t, sys.ID, m1.UserID)
	assert.True(t, sys.IsSystem)
	assert.Equal(t, entity.RoleSystem, sys.Role)
}

func TestApplyMovement_UsaElCallerIdentificado(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 0)
	u := f.user(t, "ana@example.com")

	_, mov, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 4, CallerID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, u.ID, mov.UserID)
}

func TestApplyMovement_CallerDesconocido(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 0)

	_, _, err := f.gateway.ApplyMovement(context.Background(), inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 4, CallerID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Len(t, f.movements(t, p.ID), 0)
}

func TestVerifyLedger_ReplayCoincideConCantidad(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 100)
	ctx := context.Background()
	for _, in := range []inventory.MovementInput{
		{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 30},
		{ProductID: p.ID, Type: entity.MovementTypeADJUSTMENT, Quantity: 50},
		{ProductID: p.ID, Type: entity.MovementTypeRETURN, Quantity: 10},
	} {
		_, _, err := f.gateway.ApplyMovement(ctx, in)
		require.NoError(t, err)
	}

	report, err := f.gateway.VerifyLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, report.Quantity)
	assert.Equal(t, 60, report.Replayed)
	assert.True(t, report.Consistent)

	_, err = f.gateway.VerifyLedger(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListMovements_FiltraPorTipo(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "A-1", 10)
	ctx := context.Background()
	_, _, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 2})
	require.NoError(t, err)

	outs, err := f.gateway.ListMovements(ctx, repository.MovementFilter{ProductID: p.ID, Type: entity.MovementTypeOUT}, 0)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, 2, outs[0].Quantity)

	_, err = f.gateway.ListMovements(ctx, repository.MovementFilter{Type: "BOGUS"}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
