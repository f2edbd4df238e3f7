package data

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding-trends/internal/model"
)

const disclosureHeader = "Delivery Date,Hour Ending,Repeated Hour Flag,Resource Name,Resource Type,QSE," +
	"QSE submitted Curve-MW1,QSE submitted Curve-Price1,QSE submitted Curve-MW2,QSE submitted Curve-Price2," +
	"QSE submitted Curve-MW3,QSE submitted Curve-Price3\n"

func TestReadCSV(t *testing.T) {
	in := disclosureHeader +
		"01/15/2024,1,N,U1,T1,QSE_A,10,30,20,35,,\n" +
		"2023-01-15,02,N,U1,T1,QSE_A,\"1,200.5\",-250.00,,,,\n" +
		",,,,,,,,,,,\n" +
		"01/16/2024,24:00,N,FRNYPP_CC1_4,CCGT90,QSE_B,,,,,,\n"

	records, err := ReadCSV(strings.NewReader(in), "bids.csv", CSVOptions{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, model.BidRecord{
		DeliveryDate: model.NewDate(2024, 1, 15),
		HourEnding:   1,
		ResourceName: "U1",
		ResourceType: "T1",
		QSE:          "QSE_A",
		Prices:       []float64{30, 35},
		Quantities:   []float64{10, 20},
	}, records[0])

	assert.Equal(t, model.NewDate(2023, 1, 15), records[1].DeliveryDate)
	assert.Equal(t, 2, records[1].HourEnding)
	assert.Equal(t, []float64{1200.5}, records[1].Quantities)
	assert.Equal(t, []float64{-250}, records[1].Prices)

	assert.Equal(t, 24, records[2].HourEnding)
	assert.Equal(t, []float64{}, records[2].Prices)
	assert.Equal(t, []float64{}, records[2].Quantities)
}

func TestReadCSV_HalfTierIsRejected(t *testing.T) {
	tests := []struct {
		name       string
		row        string
		wantColumn string
	}{
		{"price missing", "01/15/2024,1,N,U1,T1,QSE_A,10,30,20,,,\n", PriceColumn(2)},
		{"mw missing", "01/15/2024,1,N,U1,T1,QSE_A,,30,,,,\n", MWColumn(1)},
		// MW1 and Price2 would line up to equal-length arrays if read side by side
		{"compensating halves", "01/15/2024,1,N,U1,T1,QSE_A,10,,,99,,\n", PriceColumn(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadCSV(strings.NewReader(disclosureHeader+tt.row), "bids.csv", CSVOptions{})
			assert.Nil(t, records)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantColumn, pe.Column)
			assert.Equal(t, 2, pe.Line)
			assert.ErrorIs(t, err, errHalfTier)
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantColumn string
		wantLine   int
	}{
		{"bad date", disclosureHeader + "2024-13-45,1,N,U1,T1,Q,,,,,,\n", ColDeliveryDate, 2},
		{"bad hour", disclosureHeader + "01/15/2024,one,N,U1,T1,Q,,,,,,\n", ColHourEnding, 2},
		{"bad price", disclosureHeader + "01/15/2024,1,N,U1,T1,Q,10,3O,,,,\n", PriceColumn(1), 2},
		{"bad mw on later line", disclosureHeader +
			"01/15/2024,1,N,U1,T1,Q,10,30,,,,\n" +
			"01/15/2024,2,N,U1,T1,Q,1,30,x,31,,\n", MWColumn(2), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), "bids.csv", CSVOptions{})
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, "bids.csv", pe.Source)
			assert.Equal(t, tt.wantColumn, pe.Column)
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.NotNil(t, errors.Unwrap(pe))
		})
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Delivery Date,Hour Ending,Resource Name,QSE\n"), "x.csv", CSVOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingColumn)
	assert.Contains(t, err.Error(), ColResourceType)
}

func TestReadCSV_EmptyAndBOM(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""), "empty.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)

	in := "\ufeff" + disclosureHeader + "01/15/2024,1,N,U1,T1,QSE_A,10,30,,,,\n"
	records, err = ReadCSV(strings.NewReader(in), "bom.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadCSV_Options(t *testing.T) {
	in := "Delivery Date;Hour Ending;Resource Name;Resource Type;QSE;QSE submitted Curve-MW1;QSE submitted Curve-Price1\n" +
		"15.01.2024;3;U1;T1;Q;5;25\n"
	records, err := ReadCSV(strings.NewReader(in), "eu.csv", CSVOptions{Comma: ';', DateLayouts: []string{"02.01.2006"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.NewDate(2024, 1, 15), records[0].DeliveryDate)
}

func TestWriteCSV_ReadBack(t *testing.T) {
	want := []model.BidRecord{{
		DeliveryDate: model.NewDate(2024, 2, 29),
		HourEnding:   7,
		ResourceName: "U1",
		ResourceType: "T1",
		QSE:          "QSE_A",
		Quantities:   []float64{0.1, 50, 100},
		Prices:       []float64{-250, 22.75, 4999.99},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, want))

	got, err := ReadCSV(&buf, "round.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
