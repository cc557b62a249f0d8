package seed

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mukhsinh/manajemenresiko-sub007/models"
	"github.com/Mukhsinh/manajemenresiko-sub007/scoring"
)

var (
	hazards = []string{
		"Pasien jatuh di ruang perawatan",
		"Infeksi aliran darah terkait kateter",
		"Kekosongan stok obat esensial",
		"Gangguan listrik pada ruang operasi",
		"Kebocoran data rekam medis elektronik",
		"Keterlambatan pembayaran klaim",
		"Kerusakan alat sterilisasi",
		"Identifikasi pasien tidak tepat",
		"Limbah B3 tidak terkelola",
		"Kekurangan tenaga perawat shift malam",
	}
	causes = []string{
		"SOP belum disosialisasikan",
		"Beban kerja tinggi",
		"Pemeliharaan alat tidak terjadwal",
		"Sistem informasi belum terintegrasi",
		"Anggaran terbatas",
	}
	impacts = []string{
		"Cedera pada pasien",
		"Kerugian finansial",
		"Pelayanan terhenti",
		"Sanksi regulasi",
		"Turunnya kepercayaan masyarakat",
	}
)

// Generate builds n synthetic risks spread over the given units and categories.
// About half carry a residual rating no worse than the inherent one.
func Generate(rng *rand.Rand, n int, orgID primitive.ObjectID, units, categories []primitive.ObjectID, year int) []models.RiskInput {
	if n <= 0 || len(units) == 0 || len(categories) == 0 {
		return nil
	}
	now := time.Now().UTC()
	out := make([]models.RiskInput, 0, n)
	for i := 0; i < n; i++ {
		p := 1 + rng.Intn(scoring.MaxScale)
		im := 1 + rng.Intn(scoring.MaxScale)
		inherent, _ := scoring.Assess(p, im)

		r := models.RiskInput{
			ID:                primitive.NewObjectID(),
			OrganizationID:    orgID,
			Code:              fmt.Sprintf("RSK-%d-G%04d", year, i+1),
			WorkUnitID:        units[rng.Intn(len(units))],
			CategoryID:        categories[rng.Intn(len(categories))],
			Year:              year,
			Title:             hazards[rng.Intn(len(hazards))],
			Cause:             causes[rng.Intn(len(causes))],
			ImpactDescription: impacts[rng.Intn(len(impacts))],
			Status:            models.RiskOpen,
			Inherent:          inherent,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if rng.Intn(2) == 0 {
			rp := 1 + rng.Intn(p)
			ri := 1 + rng.Intn(im)
			residual, _ := scoring.Assess(rp, ri)
			r.Residual = &residual
			r.Status = models.RiskMitigated
		}
		out = append(out, r)
	}
	return out
}
