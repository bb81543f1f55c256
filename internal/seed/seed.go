package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultStock = 50

type section struct {
	name   string
	prefix string
	count  int
}

var sections = []section{
	{name: "Alt Kat", prefix: "A", count: 20},
	{name: "Bahçe", prefix: "B", count: 15},
	{name: "2. Kat", prefix: "K2", count: 15},
	{name: "Teras", prefix: "T", count: 10},
}

type category struct {
	name      string
	basePrice int64
	items     []string
}

var menu = []category{
	{name: "Başlangıçlar", basePrice: 120, items: []string{"Çorba", "Bruschetta", "Karides Güveç", "Paçanga Böreği", "Haydari", "Humus", "Atom", "Girit Ezme", "Şakşuka", "Fava", "Mantar Dolma", "Sigara Böreği", "Kalamar Tava", "Ahtapot Salatası", "Patlıcan Ezme", "Gavurdağı Salata", "Mevsim Salata", "Çoban Salata", "Peynir Tabağı", "Söğüş Tabağı"}},
	{name: "Ana Yemekler", basePrice: 350, items: []string{"Izgara Köfte", "Kuzu Şiş", "Dana Antrikot", "Tavuk Şiş", "Adana Kebap", "Urfa Kebap", "Ali Nazik", "Hünkar Beğendi", "Karışık Izgara", "Beyti Sarma", "Çökertme Kebabı", "Sac Kavurma", "Kuzu Pirzola", "Dana Bonfile", "Tavuk Kanat", "Tavuk Pirzola", "Levrek Izgara", "Çupra Izgara", "Somon Izgara", "Kiremitte Köfte"}},
	{name: "İçecekler", basePrice: 40, items: []string{"Kola", "Fanta", "Sprite", "Ice Tea", "Şalgam", "Ayran", "Su", "Soda", "Meyve Suyu", "Limonata", "Taze Portakal Suyu", "Türk Kahvesi", "Çay", "Bitki Çayı", "Espresso", "Latte", "Cappuccino", "Americano", "Filtre Kahve", "Sıcak Çikolata"}},
	{name: "Tatlılar", basePrice: 150, items: []string{"Künefe", "Katmer", "Sütlaç", "Kazandibi", "Baklava", "Şöbiyet", "Fıstıklı Sarma", "Trileçe", "Cheesecake", "Tiramisu", "Profiterol", "Magnolia", "Dondurma", "Meyve Tabağı", "Kabak Tatlısı", "Ayva Tatlısı", "İrmik Helvası", "Revani", "Şekerpare", "Kemalpaşa"}},
	{name: "Alkollü İçecekler", basePrice: 250, items: []string{"Rakı 35cl", "Rakı 50cl", "Rakı 70cl", "Rakı 100cl", "Bira 33cl", "Bira 50cl", "Şarap Kadeh", "Şarap Şişe", "Votka Kadeh", "Votka Şişe", "Cin Tonik", "Viski Kadeh", "Viski Şişe", "Tekila Shot", "Kokteyl 1", "Kokteyl 2", "Kokteyl 3", "Likör", "Konyak", "Şampanya"}},
}

func Tables(now time.Time) []models.Table {
	var out []models.Table
	for _, s := range sections {
		for i := 1; i <= s.count; i++ {
			out = append(out, models.Table{
				Name:      fmt.Sprintf("%s %d", s.prefix, i),
				Section:   s.name,
				Status:    models.TableAvailable,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	return out
}

func Products(now time.Time) []models.Product {
	var out []models.Product
	for _, c := range menu {
		for i, name := range c.items {
			out = append(out, models.Product{
				Name:        name,
				Price:       c.basePrice + int64(i)*5,
				Category:    c.name,
				Description: fmt.Sprintf("Lezzetli %s sunumu", name),
				Stock:       DefaultStock,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return out
}

// Seed заполняет пустую базу демо-залом и меню. Если столы уже есть, ничего не делает.
func Seed(ctx context.Context, repo *repository.Repository, log *zap.Logger) (bool, error) {
	seeded := false
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		n, err := tx.Tables.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Tables.BulkCreate(ctx, Tables(now)); err != nil {
			return fmt.Errorf("seed tables: %w", err)
		}
		if err := tx.Products.BulkCreate(ctx, Products(now)); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		log.Info("База заполнена демо-данными")
	} else {
		log.Info("Столы уже есть, заполнение пропущено")
	}
	return seeded, nil
}

// Reset удаляет все данные и заполняет базу заново.
func Reset(ctx context.Context, repo *repository.Repository, log *zap.Logger) error {
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if tx.DB.Dialector.Name() == "postgres" {
			return tx.DB.WithContext(ctx).
				Exec("TRUNCATE order_items, orders, stock_logs, products, dining_tables RESTART IDENTITY CASCADE").Error
		}
		for _, m := range []any{&models.OrderItem{}, &models.Order{}, &models.StockLogEntry{}, &models.Product{}, &models.Table{}} {
			if err := tx.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	log.Warn("Все данные удалены")

	_, err = Seed(ctx, repo, log)
	return err
}
