package plan

import (
	"github.com/samvad-hq/samvad-news-briefing/pkg/curation"
	"github.com/samvad-hq/samvad-news-briefing/pkg/sources"
)

// Default returns the built-in plan used when no sources file exists.
func Default() Plan {
	return Plan{
		PrimaryRegion: "US",
		Feeds: []Feed{
			{
				ID:       "global",
				Category: "overseas",
				Regions:  []string{"US", "GB", "JP", "HK"},
				Queries: []string{
					"Artificial Intelligence business",
					"Sports technology startups",
					"Football analytics",
					"Generative AI trends",
				},
			},
			{
				ID:       "kr_policy",
				Category: "policy",
				Regions:  []string{"KR"},
				Queries: []string{
					"과학기술정보통신부 AI 산업 육성",
					"범정부 AI 국가전략",
					"문화체육관광부 스포츠산업 지원",
					"스포츠 테크 투자 펀드 정책",
					"데이터 산업 진흥 로드맵",
				},
			},
		},
		Sections: SectionPlan{
			BaseURL:        sources.DefaultSectionBaseURL,
			ArticlePattern: sources.DefaultArticlePattern,
			PerSectionCap:  8,
			MinTitleRunes:  10,
			Items: []sources.Section{
				{ID: "100", Name: "정치"},
				{ID: "105", Name: "IT/과학"},
				{ID: "101", Name: "경제"},
			},
		},
		Groups: []Group{
			{
				ID:          "domestic",
				Categories:  []string{"policy", "domestic"},
				Title:       "🇰🇷 {date} 국내 AI/스포츠 정책 & 산업",
				Description: "정부 지원 사업 및 네이버 뉴스 요약",
				Color:       0x00ff00,
				Label:       "국내(정책/산업 Top 5)",
				Count:       curation.Exactly(5, 3),
				Rules: []string{
					"정부 정책(과기부/문체부), 대기업의 AI/스포츠 투자, 규제 이슈 집중. (단순 정쟁/가십 절대 제외)",
					"경기 스코어, 연예인 이슈 컷.",
				},
			},
			{
				ID:          "overseas",
				Categories:  []string{"overseas"},
				Title:       "🌎 {date} 해외 글로벌 테크 트렌드",
				Description: "미국, 유럽, 아시아 주요 뉴스 번역 리포트",
				Color:       0x3498db,
				Label:       "해외(Global Top 7)",
				Count:       curation.Exactly(7, 3),
				Rules: []string{
					"글로벌 AI 트렌드, 빅테크 움직임, 해외 스포츠 비즈니스 모델. (반드시 한국어로 번역/요약)",
					"경기 스코어, 연예인 이슈 컷.",
				},
			},
		},
	}
}
