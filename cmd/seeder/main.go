// cmd/seeder/main.go

package main

import (
	"fmt"
	"log"
	"math/rand"

	"Lumen_Blog/internal/config"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/pkg/database"

	"github.com/go-faker/faker/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	readerCount       = 50
	postCount         = 30
	commentsPerPost   = 40
	defaultPassword   = "password"
	replyProbability  = 0.6 // 一条评论是回复的概率
	publishedFraction = 0.8 // 已发布评论的比例
)

func main() {
	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库 ---
	if err := config.LoadEnv(); err != nil {
		log.Printf(".env文件加载失败，使用环境变量: %v", err)
	}
	cfg := config.Load()
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("❌ 无法连接到数据库: %v", err)
	}
	fmt.Println("✅ 数据库连接成功!")

	// --- 2. 清理旧数据 ---
	// 注意：这将删除所有数据！
	fmt.Println("🧹 正在清理旧数据...")
	if err := db.Migrator().DropTable(&model.CommentEvent{}, &model.Comment{}, &model.Post{}, &model.User{}); err != nil {
		log.Fatalf("❌ 删除旧表失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	// --- 3. 创建用户 ---
	// 所有用户的密码都是 "password"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ 密码加密失败: %v", err)
	}
	staff := []model.User{
		{Username: "admin", Password: string(hashedPassword), Role: model.RoleAdmin},
		{Username: "moderator", Password: string(hashedPassword), Role: model.RoleModerator},
	}
	if err := db.Create(&staff).Error; err != nil {
		log.Fatalf("❌ 创建管理员失败: %v", err)
	}
	readers := make([]model.User, 0, readerCount)
	seen := map[string]bool{"admin": true, "moderator": true}
	for len(readers) < readerCount {
		name := faker.Username()
		if seen[name] {
			continue
		}
		seen[name] = true
		readers = append(readers, model.User{Username: name, Password: string(hashedPassword), Role: model.RoleReader})
	}
	if err := db.CreateInBatches(&readers, 100).Error; err != nil {
		log.Fatalf("❌ 创建用户失败: %v", err)
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", len(staff)+len(readers))

	// --- 4. 创建文章和评论 ---
	fmt.Println("📝 正在创建文章和评论...")
	total := 0
	for i := 0; i < postCount; i++ {
		post := model.Post{
			AuthorID: staff[rand.Intn(len(staff))].ID,
			Title:    faker.Sentence(),  // 生成一个随机的句子作为标题
			Summary:  faker.Sentence(),
			Content:  faker.Paragraph(), // 生成一个随机的段落作为正文
		}
		if err := db.Create(&post).Error; err != nil {
			log.Fatalf("❌ 创建文章失败: %v", err)
		}

		// 父评论只能从同一篇文章里已经创建的评论中选，保证不会有环
		ids := make([]uint64, 0, commentsPerPost)
		for j := 0; j < commentsPerPost; j++ {
			comment := model.Comment{
				SubjectID:  post.ID,
				AuthorName: faker.Name(),
				Body:       faker.Paragraph(),
				Published:  rand.Float64() < publishedFraction,
			}
			if rand.Intn(3) == 0 {
				email := faker.Email()
				comment.AuthorEmail = &email
			}
			if len(ids) > 0 && rand.Float64() < replyProbability {
				parent := ids[rand.Intn(len(ids))]
				comment.ParentID = &parent
			}
			if err := db.Create(&comment).Error; err != nil {
				log.Fatalf("❌ 创建评论失败: %v", err)
			}
			ids = append(ids, comment.ID)
		}
		total += len(ids)
	}
	fmt.Printf("✅ 成功创建 %d 篇文章, %d 条评论!\n", postCount, total)
	fmt.Printf("🔑 管理员: admin / %s, 审核员: moderator / %s\n", defaultPassword, defaultPassword)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}
