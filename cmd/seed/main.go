package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"bookswap/config"
	"bookswap/db"
	"bookswap/models"
	"bookswap/services"

	"github.com/brianvoe/gofakeit/v7"
)

var genres = []string{
	"Fiction", "Science Fiction", "Fantasy", "Mystery", "Biography",
	"History", "Romance", "Thriller", "Poetry", "Programming",
}

var conditions = []string{
	models.ConditionNew, models.ConditionLikeNew, models.ConditionGood,
	models.ConditionFair, models.ConditionPoor,
}

var lendingTypes = []string{
	string(models.LendingOnly), string(models.SwappingOnly), string(models.LendingBoth),
}

// Генератор тестовых данных: пользователи, книги и вишлисты.
// Заменяет разовые скрипты наполнения базы.
func main() {
	var configPath string
	var userCount, booksPerUser, wishlistPerUser int
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.IntVar(&userCount, "users", 50, "Number of users to create")
	flag.IntVar(&booksPerUser, "books", 5, "Books per user")
	flag.IntVar(&wishlistPerUser, "wishlist", 3, "Wishlist entries per user")
	flag.Parse()

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if err := db.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}

	ctx := context.Background()
	userService := services.NewUserService()
	bookService := services.NewBookService()
	wishlistService := services.NewWishlistService()

	created := 0
	for i := 0; i < userCount; i++ {
		name := gofakeit.FirstName()
		user := &models.User{
			Username:  fmt.Sprintf("%s_%s", strings.ToLower(name), gofakeit.Numerify("######")),
			Email:     gofakeit.Email(),
			Password:  gofakeit.Password(true, false, true, true, false, 10),
			FirstName: name,
			LastName:  gofakeit.LastName(),
		}
		if _, err := userService.Register(ctx, user); err != nil {
			log.Println("Failed to create user:", err)
			continue
		}
		created++

		for j := 0; j < booksPerUser; j++ {
			year := gofakeit.Number(1950, 2024)
			book := &models.Book{
				Title:           gofakeit.BookTitle(),
				Author:          gofakeit.BookAuthor(),
				ISBN:            gofakeit.Numerify("978#########"),
				Genre:           gofakeit.RandomString(genres),
				Description:     gofakeit.Paragraph(1, 3, 12, " "),
				Condition:       gofakeit.RandomString(conditions),
				LendingType:     models.LendingType(gofakeit.RandomString(lendingTypes)),
				PublicationYear: &year,
			}
			if _, err := bookService.CreateBook(ctx, user.ID, book); err != nil {
				log.Println("Failed to create book:", err)
			}
		}

		for j := 0; j < wishlistPerUser; j++ {
			_, _, err := wishlistService.Add(ctx, user.ID,
				gofakeit.BookTitle(), gofakeit.BookAuthor(), gofakeit.Numerify("978#########"))
			if err != nil {
				log.Println("Failed to create wishlist entry:", err)
			}
		}
	}

	log.Printf("Seeding done: %d users created", created)
}
